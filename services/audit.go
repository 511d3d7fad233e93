package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

type AuditService struct {
	DB *sql.DB
}

// Record 追加一条审计记录。审计失败只记日志，不影响主操作。
func (s *AuditService) Record(ctx context.Context, userID int, action string, details map[string]any) {
	data, err := json.Marshal(details)
	if err != nil {
		log.Printf("Failed to marshal audit details for %s: %v", action, err)
		return
	}
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (user_id, action, details, created_at) VALUES (?, ?, ?, ?)",
		userID, action, string(data), time.Now()); err != nil {
		log.Printf("Failed to write audit log for %s: %v", action, err)
	}
}
