package config

// Config is the decoded envreport.hcl file. Every attribute is optional;
// unset attributes keep their defaults.
type Config struct {
	Python      *string   `hcl:"python,optional"`
	Accelerator *string   `hcl:"accelerator,optional"`
	GCC         *string   `hcl:"gcc,optional"`
	Host        *bool     `hcl:"host,optional"`
	Format      *string   `hcl:"format,optional"`
	Template    *string   `hcl:"template,optional"`
	Query       *string   `hcl:"query,optional"`
	Log         *LogBlock `hcl:"log,block"`
}

// LogBlock configures diagnostic logging
type LogBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}
