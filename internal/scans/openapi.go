package scans

import "github.com/JaimeStill/idscan/pkg/openapi"

// Schemas returns the component schemas referenced by scan routes.
func Schemas() map[string]*openapi.Schema {
	str := func(desc string) *openapi.Schema {
		return &openapi.Schema{Type: "string", Description: desc}
	}

	return map[string]*openapi.Schema{
		"Scan": {
			Type:     "object",
			Required: []string{"handle", "filename", "image_key"},
			Properties: map[string]*openapi.Schema{
				"handle":      {Type: "string", Format: "uuid"},
				"filename":    str("Sanitized upload filename"),
				"image_key":   str("Staging storage key"),
				"uploaded_at": {Type: "string", Format: "date-time"},
			},
		},
		"ExtractionResult": {
			Type:     "object",
			Required: []string{"identity_number", "surname", "name", "birth_date"},
			Properties: map[string]*openapi.Schema{
				"identity_number": str("Empty when the field was not detected or read"),
				"surname":         str("Empty when the field was not detected or read"),
				"name":            str("Empty when the field was not detected or read"),
				"birth_date":      str("Day-first date with '-' separators, as printed on the card"),
			},
		},
		"Extraction": {
			Type:     "object",
			Required: []string{"handle", "result", "missing"},
			Properties: map[string]*openapi.Schema{
				"handle": {Type: "string", Format: "uuid"},
				"result": openapi.SchemaRef("ExtractionResult"),
				"missing": {
					Type:  "array",
					Items: &openapi.Schema{Type: "string", Enum: []any{"birth_date", "id_number", "name", "surname"}},
				},
			},
		},
		"CurrentScan": {
			Type:     "object",
			Required: []string{"scan"},
			Properties: map[string]*openapi.Schema{
				"scan":   openapi.SchemaRef("Scan"),
				"result": openapi.SchemaRef("ExtractionResult"),
			},
		},
	}
}

var handleParam = openapi.PathParam("handle", "uuid", "Scan handle returned by upload")

var uploadDoc = &openapi.Operation{
	Summary:     "Upload a card image",
	Description: "Stages the image as the current scan. Any previously staged image and result are discarded.",
	RequestBody: openapi.RequestBodyFile("file", "PNG or JPEG card image"),
	Responses: map[int]*openapi.Response{
		201: openapi.ResponseJSON("Staged scan", "Scan"),
		400: openapi.ResponseRef("BadRequest"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		422: openapi.ResponseRef("UnprocessableEntity"),
	},
}

var latestDoc = &openapi.Operation{
	Summary: "Current scan",
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Current scan and staged result", "CurrentScan"),
		404: openapi.ResponseRef("NotFound"),
	},
}

var extractResponses = map[int]*openapi.Response{
	200: openapi.ResponseJSON("Extracted fields", "Extraction"),
	400: openapi.ResponseRef("BadRequest"),
	404: openapi.ResponseRef("NotFound"),
	409: openapi.ResponseRef("Conflict"),
	422: openapi.ResponseRef("UnprocessableEntity"),
	500: openapi.ResponseRef("InternalError"),
	503: openapi.ResponseRef("ServiceUnavailable"),
}

var extractLatestDoc = &openapi.Operation{
	Summary:   "Extract fields from the current scan",
	Responses: extractResponses,
}

var extractDoc = &openapi.Operation{
	Summary:    "Extract fields from a scan",
	Parameters: []*openapi.Parameter{handleParam},
	Responses:  extractResponses,
}

var saveResponses = map[int]*openapi.Response{
	201: openapi.ResponseJSON("Saved record", "IdentityRecord"),
	400: openapi.ResponseRef("BadRequest"),
	404: openapi.ResponseRef("NotFound"),
	409: openapi.ResponseRef("Conflict"),
	500: openapi.ResponseRef("InternalError"),
}

var saveLatestDoc = &openapi.Operation{
	Summary:   "Save the staged result",
	Responses: saveResponses,
}

var saveDoc = &openapi.Operation{
	Summary:    "Save the staged result for a scan",
	Parameters: []*openapi.Parameter{handleParam},
	Responses:  saveResponses,
}
