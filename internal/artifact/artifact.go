// Package artifact defines the values each training stage hands to the next.
// Artifacts are plain values; a stage never modifies the artifact it receives.
package artifact

// DataIngestion locates the persisted train and test partitions.
type DataIngestion struct {
	TrainFilePath string `json:"train_file_path" yaml:"train_file_path"`
	TestFilePath  string `json:"test_file_path" yaml:"test_file_path"`
	FeatureStore  string `json:"feature_store" yaml:"feature_store"`
}

// DataValidation reports whether both partitions conform to the schema.
// Message concatenates every failure and is empty when Status is true.
type DataValidation struct {
	Status     bool   `json:"status" yaml:"status"`
	Message    string `json:"message" yaml:"message"`
	ReportPath string `json:"report_path" yaml:"report_path"`
}

// Metric holds held-out classification scores.
type Metric struct {
	F1        float64 `json:"f1" yaml:"f1"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
}

// ModelTrainer locates the trained bundle and its held-out scores.
type ModelTrainer struct {
	ModelFilePath string `json:"model_file_path" yaml:"model_file_path"`
	Metric        Metric `json:"metric" yaml:"metric"`
}

// ModelEvaluation is the champion/challenger outcome.
type ModelEvaluation struct {
	Accepted         bool     `json:"accepted" yaml:"accepted"`
	ChangedAccuracy  float64  `json:"changed_accuracy" yaml:"changed_accuracy"`
	TrainedF1        float64  `json:"trained_f1" yaml:"trained_f1"`
	BestF1           *float64 `json:"best_f1,omitempty" yaml:"best_f1,omitempty"`
	RegistryLocation string   `json:"registry_location" yaml:"registry_location"`
	TrainedModelPath string   `json:"trained_model_path" yaml:"trained_model_path"`
}

// ModelPusher records where an accepted model was promoted.
type ModelPusher struct {
	RegistryLocation string `json:"registry_location" yaml:"registry_location"`
}
