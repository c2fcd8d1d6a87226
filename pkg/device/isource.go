package device

import "github.com/edp1096/opspice/pkg/matrix"

// stampCurrentSource injects current into n1 and draws it from n2.
func stampCurrentSource(m matrix.DeviceMatrix, n1, n2 int, current float64) {
	if n1 != 0 {
		m.AddRHS(n1, current)
	}
	if n2 != 0 {
		m.AddRHS(n2, -current)
	}
}
