package config

import "runtime"

func workerCPUCount() int {
	return runtime.NumCPU()
}
