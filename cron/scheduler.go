package cron

import (
	"log"
	"sort"

	"github.com/robfig/cron/v3"

	"lunelle.GO/config"
)

// Scheduled lists the enabled jobs with their effective schedules,
// after CRON_<NAME> overrides and CRON_DISABLED.
func Scheduled() map[string]string {
	out := map[string]string{}
	for name, j := range Jobs() {
		if config.CronDisabled(name) {
			continue
		}
		out[name] = config.CronSchedule(name, j.Schedule)
	}
	return out
}

// StartCron schedules every enabled job. A run that is still going when its
// next tick fires is skipped, and a panicking job is logged, not fatal.
func StartCron() *cron.Cron {
	logger := cron.VerbosePrintfLogger(log.Default())
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	jobs := Jobs()
	schedules := Scheduled()
	names := make([]string, 0, len(schedules))
	for name := range schedules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		run := jobs[name].Run
		if _, err := c.AddFunc(schedules[name], func() { run() }); err != nil {
			log.Fatalf("Failed to register job %s: %v", name, err)
		}
		log.Printf("cron: %s scheduled %q", name, schedules[name])
	}
	c.Start()
	return c
}
