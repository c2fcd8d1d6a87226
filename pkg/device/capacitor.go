package device

import "github.com/edp1096/opspice/pkg/matrix"

// stampCapacitor is a no-op: a capacitor is an open circuit at the operating
// point. Nodes held only by capacitors are caught by topology validation or
// by the configured gmin.
func stampCapacitor(m matrix.DeviceMatrix, n1, n2 int) {}
