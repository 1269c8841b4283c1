// Package fixtures builds deterministic customer data and stand-in
// collaborators for pipeline tests.
package fixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/schema"
)

// Columns is the raw collection layout in document field order.
var Columns = []string{
	"id", "Gender", "Age", "Driving_License", "Region_Code", "Previously_Insured",
	"Vehicle_Age", "Vehicle_Damage", "Annual_Premium", "Policy_Sales_Channel", "Vintage", "Response",
}

var vehicleAges = []string{"< 1 Year", "1-2 Year", "> 2 Years"}

// SchemaPath returns the absolute path of the bundled schema declaration.
func SchemaPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "config", "schema.yaml")
}

// Schema loads the bundled schema declaration.
func Schema() (*schema.Schema, error) {
	return schema.Load(SchemaPath())
}

// Logger discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Customers returns n raw customer rows. A customer responds exactly when
// they are not previously insured and their vehicle was damaged, so the
// target is linearly separable on the encoded features.
func Customers(n int) dataset.Frame {
	rows := make([][]dataset.Value, n)
	for i := range n {
		insured := i % 2
		damage := "No"
		if i%3 != 0 {
			damage = "Yes"
		}
		gender := "Male"
		if (i/3)%2 == 0 {
			gender = "Female"
		}
		response := 0
		if insured == 0 && damage == "Yes" {
			response = 1
		}

		rows[i] = []dataset.Value{
			dataset.Number(float64(i + 1)),
			dataset.String(gender),
			dataset.Number(float64(20 + (i*7)%60)),
			dataset.Number(1),
			dataset.Number(float64((i * 13) % 50)),
			dataset.Number(float64(insured)),
			dataset.String(vehicleAges[(i/2)%3]),
			dataset.String(damage),
			dataset.Number(float64(2630 + (i*977)%50000)),
			dataset.Number(float64((i*11)%160 + 1)),
			dataset.Number(float64(10 + (i*17)%290)),
			dataset.Number(float64(response)),
		}
	}
	return dataset.MustNew(Columns, rows)
}

// Exporter returns a fixed frame or error for every collection.
type Exporter struct {
	Frame dataset.Frame
	Err   error
	calls atomic.Int32
}

func (e *Exporter) ExportCollection(_ context.Context, _ string) (dataset.Frame, error) {
	e.calls.Add(1)
	if e.Err != nil {
		return dataset.Frame{}, e.Err
	}
	return e.Frame, nil
}

// Calls reports how many exports have been requested.
func (e *Exporter) Calls() int {
	return int(e.calls.Load())
}
