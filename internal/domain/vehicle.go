package domain

// Vehicle is a stored vehicle profile keyed by VIN. Immutable once returned
// from the record store.
type Vehicle struct {
	VIN   string
	Make  string
	Model string
	Year  int
}
