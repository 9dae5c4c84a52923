// Command borgwrap runs borg backups described by task files in
// /etc/borgwrap.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/modulus-sa/abcmd/backup"
	"github.com/modulus-sa/abcmd/command"
	"github.com/modulus-sa/abcmd/config"
	"github.com/modulus-sa/abcmd/logger"
	"github.com/modulus-sa/abcmd/wrapper"
)

// listTimeLayout matches the {time} placeholder of borg list
const listTimeLayout = "Mon, 2006-01-02 15:04:05"

var surface = command.NewSurface("borg").
	Template("init", "borg init {-e encryption} {repository}").
	Template("create", "borg create {verbose} {stats} {--exclude exclude} {repository}::{{hostname}}-{{now}} {paths}").
	Template("prune", "borg prune {verbose} {--keep-daily keep_daily} {--keep-weekly keep_weekly} {--keep-monthly keep_monthly} {repository}").
	Template("list", "borg list --last 1 --format {{time}} {repository}").
	Handle(command.Handler{
		Name:    "init missing repository",
		Command: "create",
		Error:   "Repository .* does not exist",
		Func:    initAndRetry,
	})

var schema = config.NewSchema(backup.Schema).
	Required("repository", config.String).
	Default("encryption", "none").
	Default("stats", false).
	Default("keep_daily", 7).
	Default("keep_weekly", 4).
	Default("keep_monthly", 6)

// initAndRetry initialises a missing repository and runs create once
// more. The retry bypasses handlers, so a create that still fails is
// reported instead of starting another init.
func initAndRetry(c *command.Command, errText string) bool {
	c.Logger().Info("Repository does not exist, initialising")
	if _, err := c.Call("init"); err != nil {
		return false
	}

	create := c.Runner("create").String()
	rc, _, retryErr := c.Exec(create)
	if rc != 0 {
		c.Logger().Error("Create failed after init: "+strings.TrimSpace(retryErr), logger.F("rc", rc))
		return false
	}
	return true
}

// lastBackupTime reads the time of the newest archive. A repository that
// cannot be listed has no backups.
func lastBackupTime(c *command.Command) (time.Time, error) {
	rc, out, errText := c.Exec(c.Runner("list").String())
	if rc != 0 {
		c.Logger().Debug("No previous backup", logger.F("error", strings.TrimSpace(errText)))
		return time.Time{}, nil
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return time.Time{}, nil
	}
	last, err := time.ParseInLocation(listTimeLayout, out, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing borg list output %q: %w", out, err)
	}
	return last, nil
}

// borg creates an archive and prunes old ones
type borg struct {
	*backup.Backup
	task string
}

func (b *borg) Run(c *command.Command, args ...string) error {
	if _, err := c.Call("create"); err != nil {
		b.SendMail(c, fmt.Sprintf("borg backup %s failed: %v", b.task, err))
		return err
	}
	_, err := c.Call("prune")
	return err
}

func newProcedure(task string, cfg config.Config) command.Procedure {
	return &borg{
		Backup: &backup.Backup{LastBackupTime: lastBackupTime},
		task:   task,
	}
}

func spec() wrapper.Spec {
	return wrapper.Spec{
		Name:      "borgwrap",
		Short:     "Run borg backups from task files",
		ConfDir:   "/etc/borgwrap",
		Surface:   surface,
		Schema:    schema,
		Procedure: newProcedure,
	}
}

func main() {
	wrapper.Main(spec())
}
