package device

import "github.com/edp1096/opspice/pkg/matrix"

// stampInductor shorts the inductor with a 0 V source so its DC current
// shows up as the branch unknown.
func stampInductor(m matrix.DeviceMatrix, n1, n2, bIdx int) {
	stampVoltageSource(m, n1, n2, bIdx, 0)
}
