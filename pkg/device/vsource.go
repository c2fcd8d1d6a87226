package device

import "github.com/edp1096/opspice/pkg/matrix"

func stampVoltageSource(m matrix.DeviceMatrix, n1, n2, bIdx int, voltage float64) {
	// v1 - v2 = V
	if n1 != 0 {
		m.AddElement(bIdx, n1, 1) // v1 coefficient
		m.AddElement(n1, bIdx, 1) // n1 current
	}
	if n2 != 0 {
		m.AddElement(bIdx, n2, -1) // -v2 coefficient
		m.AddElement(n2, bIdx, -1) // n2 current
	}
	m.AddRHS(bIdx, voltage)
}
