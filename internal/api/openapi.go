package api

import (
	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/pkg/openapi"
)

var vehicleFields = []struct {
	name string
	typ  string
}{
	{"Gender", "integer"},
	{"Age", "integer"},
	{"Driving_License", "integer"},
	{"Region_Code", "number"},
	{"Previously_Insured", "integer"},
	{"Annual_Premium", "number"},
	{"Policy_Sales_Channel", "number"},
	{"Vintage", "integer"},
	{"Vehicle_Age_lt_1_Year", "integer"},
	{"Vehicle_Age_gt_2_Years", "integer"},
	{"Vehicle_Damage_Yes", "integer"},
}

func schemas() map[string]*openapi.Schema {
	vehicle := &openapi.Schema{Type: "object", Properties: map[string]*openapi.Schema{}}
	for _, f := range vehicleFields {
		vehicle.Properties[f.name] = &openapi.Schema{Type: f.typ}
		vehicle.Required = append(vehicle.Required, f.name)
	}

	number := &openapi.Schema{Type: "number"}
	str := &openapi.Schema{Type: "string"}

	return map[string]*openapi.Schema{
		"VehicleData": vehicle,
		"PredictResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"prediction": {Type: "integer", Enum: []any{0, 1}},
				"message":    str,
			},
		},
		"TrainResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"result": {Type: "object", Description: "Run state and the artifacts of every stage that ran"},
				"error":  str,
			},
		},
		"Run": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                {Type: "string", Format: "uuid"},
				"state":             str,
				"failed_at":         str,
				"error":             str,
				"dir":               str,
				"trained_f1":        number,
				"best_f1":           number,
				"changed_accuracy":  number,
				"accepted":          {Type: "boolean"},
				"promoted":          {Type: "boolean"},
				"registry_location": str,
				"started_at":        {Type: "string", Format: "date-time"},
				"finished_at":       {Type: "string", Format: "date-time"},
			},
		},
		"RunPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Run")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
			},
		},
	}
}

// Spec describes the JSON API. Run history paths are included only when
// withRuns is set.
func Spec(cfg *config.Config, withRuns bool) *openapi.Spec {
	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(schemas())

	spec.Paths["/predict"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Classify one customer",
			Tags:        []string{"Prediction"},
			RequestBody: openapi.RequestBodyJSON("VehicleData"),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Predicted label", "PredictResponse"),
				400: openapi.ResponseRef("BadRequest"),
				503: openapi.ResponseRef("ServiceUnavailable"),
			},
		},
	}

	spec.Paths["/train"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Run the training pipeline",
			Description: "Concurrent requests share one run.",
			Tags:        []string{"Training"},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Run finished", "TrainResponse"),
				422: openapi.ResponseJSON("Data validation failed", "TrainResponse"),
				500: openapi.ResponseJSON("Run failed", "TrainResponse"),
				503: openapi.ResponseJSON("Document store unavailable", "TrainResponse"),
			},
		},
	}

	if cfg.API.Auth.Enabled {
		spec.Paths["/train"].Post.Responses[401] = openapi.ResponseRef("Unauthorized")
	}

	if !withRuns {
		return spec
	}

	spec.Paths["/runs"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List recorded runs",
			Tags:    []string{"Runs"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("page", "integer", "Page number (1-indexed)"),
				openapi.QueryParam("page_size", "integer", "Results per page"),
				openapi.QueryParam("state", "string", "Final run state"),
				openapi.QueryParam("accepted", "boolean", "Evaluation outcome"),
				openapi.QueryParam("promoted", "boolean", "Whether the run pushed a model"),
				openapi.QueryParam("sort", "string", "Comma-separated fields, - prefix for descending"),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Page of runs", "RunPage"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/runs/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a run",
			Tags:       []string{"Runs"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Run id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Run", "Run"),
				400: openapi.ResponseRef("BadRequest"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	return spec
}
