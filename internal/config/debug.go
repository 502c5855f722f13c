package config

import "os"

func IsDebug() bool {
	return os.Getenv("SKYLARK_DEBUG") == "1"
}
