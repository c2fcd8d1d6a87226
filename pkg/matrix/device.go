package matrix

// DeviceMatrix is the stamping target shared by the dense and sparse systems.
type DeviceMatrix interface {
	AddElement(i, j int, value float64) // 1-based indexing, 0 is ground
	AddRHS(i int, value float64)
}
