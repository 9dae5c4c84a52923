// Package backup is a base for backup procedures such as borg or rsync
// wrappers. It gates runs by schedule, runs pre and post scripts and
// sends notification mail.
//
// A procedure embeds Backup and implements Run:
//
//	type borg struct{ *backup.Backup }
//
//	func (b borg) Run(c *command.Command, args ...string) error {
//		_, err := c.Call("create")
//		return err
//	}
package backup

import (
	"fmt"
	"time"

	"github.com/modulus-sa/abcmd/command"
	"github.com/modulus-sa/abcmd/config"
	"github.com/modulus-sa/abcmd/logger"
)

// Schema describes the configuration every backup task accepts
var Schema = config.NewSchema().
	Required("allowed_hours", config.List).
	Required("email_from", config.String).
	Required("email_to", config.String).
	Default("exclude", []any{}).
	Required("minimum_interval", config.Int).
	Required("paths", config.List).
	Default("verbose", false).
	Default("pre_scripts", []any{}).
	Default("post_scripts", []any{}).
	Default("disabled", false)

// Backup implements the DontRun, BeforeRun and AfterRun hooks of a
// backup procedure.
type Backup struct {
	// LastBackupTime reports when the last backup finished. A zero time
	// means there is none. Nil disables the minimum interval check.
	LastBackupTime func(c *command.Command) (time.Time, error)

	// Mailer sends notifications, SMTPMailer on localhost when nil
	Mailer Mailer

	// Now returns the current time, time.Now when nil
	Now func() time.Time
}

func (b *Backup) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// DontRun cancels the backup when the task is disabled, the current hour
// is not allowed or a backup finished within minimum_interval seconds.
func (b *Backup) DontRun(c *command.Command) bool {
	cfg := config.Config(c.Config())
	log := c.Logger()

	if cfg.Bool("disabled") {
		log.Info(fmt.Sprintf("%s task is disabled...", c.Surface().Name()))
		return true
	}
	if b.isBadTime(cfg) {
		log.Info("Not yet time to backup...")
		return true
	}
	if b.hasRecentBackup(c, cfg) {
		log.Info("There was a recent backup, aborting...")
		return true
	}
	return false
}

func (b *Backup) isBadTime(cfg config.Config) bool {
	hour := b.now().Hour()
	for _, allowed := range cfg.Ints("allowed_hours") {
		if allowed == hour {
			return false
		}
	}
	return true
}

func (b *Backup) hasRecentBackup(c *command.Command, cfg config.Config) bool {
	if b.LastBackupTime == nil {
		return false
	}

	last, err := b.LastBackupTime(c)
	if err != nil {
		c.Logger().Warn("Could not get the last backup time", logger.F("error", err))
		return false
	}
	if last.IsZero() {
		return false
	}

	interval := time.Duration(cfg.Int("minimum_interval")) * time.Second
	return b.now().Sub(last) < interval
}

// BeforeRun runs the pre_scripts
func (b *Backup) BeforeRun(c *command.Command) error {
	c.Logger().Info("Running pre-backup scripts...")
	return runScripts(c, "pre_scripts")
}

// AfterRun runs the post_scripts
func (b *Backup) AfterRun(c *command.Command) error {
	c.Logger().Info("Running post-backup scripts...")
	return runScripts(c, "post_scripts")
}

// runScripts executes the command lines listed under key, stopping at the
// first failure.
func runScripts(c *command.Command, key string) error {
	val, _ := c.Get(key)
	scripts := config.Config{key: val}.Strings(key)

	for _, script := range scripts {
		c.Logger().Debug("Executing script", logger.F("script", script))
		rc, out, errText := c.Exec(script)
		if out != "" {
			c.Logger().Debug("Output: "+out, logger.F("script", script))
		}
		if rc != 0 {
			return fmt.Errorf("%s: %q exited with %d: %s", key, script, rc, errText)
		}
	}
	return nil
}

// SendMail mails subject from email_from to email_to. Failures are logged
// and never returned.
func (b *Backup) SendMail(c *command.Command, subject string) {
	cfg := config.Config(c.Config())
	from, to := cfg.String("email_from"), cfg.String("email_to")

	mailer := b.Mailer
	if mailer == nil {
		mailer = SMTPMailer{}
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, subject)
	if err := mailer.Send(from, []string{to}, []byte(msg)); err != nil {
		c.Logger().Warn(fmt.Sprintf("Could not send email: %v", err))
		return
	}
	c.Logger().Debug("Sent email", logger.F("to", to), logger.F("subject", subject))
}
