// Package log writes one JSON object per line through the standard logger,
// tagged with the request it belongs to.
package log

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Locals keys the auth middleware fills in for every authenticated request.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelAudit Level = "audit"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type entry struct {
	TS     string         `json:"ts"`
	Level  Level          `json:"level"`
	Action string         `json:"action,omitempty"`
	ReqID  string         `json:"req_id,omitempty"`
	UserID string         `json:"user_id,omitempty"`
	Role   string         `json:"role,omitempty"`
	IP     string         `json:"ip,omitempty"`
	Method string         `json:"method,omitempty"`
	Path   string         `json:"path,omitempty"`
	Status int            `json:"status,omitempty"`
	Err    string         `json:"err,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func fromCtx(c *fiber.Ctx, e *entry) {
	e.IP = c.IP()
	e.Method = c.Method()
	e.Path = c.Path()
	e.Status = c.Response().StatusCode()
	e.ReqID, _ = c.Locals("requestid").(string)
	e.UserID, _ = c.Locals(LocalUserID).(string)
	e.Role, _ = c.Locals(LocalRole).(string)
}

func emit(level Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{TS: time.Now().UTC().Format(time.RFC3339), Level: level, Action: action, Fields: fields}
	if c != nil {
		fromCtx(c, &e)
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, mErr := json.Marshal(e)
	if mErr != nil {
		// unserialisable field values; keep the line, drop the fields
		e.Fields = map[string]any{"marshal_err": mErr.Error()}
		b, _ = json.Marshal(e)
	}
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any) { emit(LevelInfo, c, action, nil, fields) }

// Audit records a state change made on behalf of the caller.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	emit(LevelAudit, c, action, nil, fields)
}

// Security records a rejected or suspicious request.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	emit(LevelWarn, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(LevelError, c, action, err, fields)
}
