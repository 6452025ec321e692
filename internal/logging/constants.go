package logging

// Standardized field names for structured logging.
// These constants ensure consistency across the pipeline's log output,
// making logs easier to parse, filter, and analyze.
const (
	FieldFile       = "file_path"
	FieldDirectory  = "directory"
	FieldTable      = "table"
	FieldColumn     = "column"
	FieldRole       = "role"
	FieldPatterns   = "patterns"
	FieldCategory   = "category"
	FieldDate       = "date"
	FieldCount      = "count"
	FieldRows       = "rows"
	FieldHorizon    = "horizon_days"
	FieldOutputFile = "output_file"
)
