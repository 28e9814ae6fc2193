package models

// Credential maps a login to the user code that partitions its records.
type Credential struct {
	Username string
	Password string
	UserCode string
}
