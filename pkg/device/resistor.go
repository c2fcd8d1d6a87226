package device

import "github.com/edp1096/opspice/pkg/matrix"

// stampResistor loads conductance g between n1 and n2.
func stampResistor(m matrix.DeviceMatrix, n1, n2 int, g float64) {
	if n1 != 0 {
		m.AddElement(n1, n1, g)
		if n2 != 0 {
			m.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			m.AddElement(n2, n1, -g)
		}
		m.AddElement(n2, n2, g)
	}
}
