package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var base = newLogger(os.Stdout, "info")

func newLogger(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{logrus.FieldKeyTime: "ts"},
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Setup replaces the process logger. Tests use it to capture output.
func Setup(w io.Writer, level string) { base = newLogger(w, level) }

func Logger() *logrus.Logger { return base }

// With returns an entry for code that has no request at hand (services, startup).
func With(action string, fields map[string]any) *logrus.Entry {
	e := base.WithField("action", action)
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	return e
}

func entry(c *fiber.Ctx, action string, err error, fields map[string]any) *logrus.Entry {
	e := With(action, fields)
	if c != nil {
		f := logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			f["req_id"] = rid
		}
		if uid, ok := c.Locals("userID").(string); ok && uid != "" {
			f["user_id"] = uid
		}
		e = e.WithFields(f)
	}
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, nil, fields).Info(action)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, nil, fields).WithField("audit", true).Info(action)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, action, nil, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry(c, action, err, fields).Error(action)
}
