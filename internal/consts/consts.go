package consts

const (
	PivotRelTol      = 1e-12 // Smallest usable pivot relative to ||A||inf
	ResidualRelTol   = 1e-9  // Accepted relative residual for the sparse backend
	DefaultPrecision = 1     // Decimal places in query answers
	MaxPrecision     = 15
)
