package config

import (
	"os"
	"strings"
)

// CronSchedule returns the schedule for a job, overridable with CRON_<NAME>.
//
//	CRON_CATALOGWARMUP="*/5 * * * *"
func CronSchedule(name, def string) string {
	if v := os.Getenv("CRON_" + strings.ToUpper(name)); v != "" {
		return v
	}
	return def
}

// CronDisabled reports whether a job is listed in CRON_DISABLED.
func CronDisabled(name string) bool {
	for _, n := range GetEnvList("CRON_DISABLED", nil) {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
