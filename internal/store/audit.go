package store

import "context"

// AppendAudit stores one immutable trail entry, assigning its id and
// timestamp. There is no update or delete counterpart on purpose.
func (s *DB) AppendAudit(ctx context.Context, rec *AuditRecord) error {
	rec.Timestamp = s.now().UTC()
	id, err := s.insert(ctx,
		`insert into audit_logs (action, entity_type, entity_id, actor_email, actor_name, timestamp)
		 values (?, ?, ?, ?, ?, ?)`,
		rec.Action, rec.EntityType, rec.EntityID, rec.ActorEmail, rec.ActorName, rec.Timestamp)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

// ListAudit returns the full trail, most recent first.
func (s *DB) ListAudit(ctx context.Context) ([]AuditRecord, error) {
	list := []AuditRecord{}
	err := s.db.SelectContext(ctx, &list,
		`select id, action, entity_type, entity_id, actor_email, actor_name, timestamp
		 from audit_logs order by timestamp desc, id desc`)
	return list, err
}
