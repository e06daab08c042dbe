package utils

import "github.com/shirou/gopsutil/cpu"

// CPUBelow reports whether the instantaneous CPU usage is at or under the
// given ceiling, along with the sampled percentage.
func CPUBelow(maxUsage float64) (bool, float64, error) {
	usage, err := cpu.Percent(0, false)
	if err != nil {
		return false, 0, err
	}
	if len(usage) == 0 {
		return true, 0, nil
	}
	return usage[0] <= maxUsage, usage[0], nil
}
