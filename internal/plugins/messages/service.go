// Package messages handles contact form submissions and the banned IP list
// that keeps abusive clients off the public write endpoints.
package messages

import (
	"context"
	"log/slog"
	"net"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/content"
	"github.com/keyxmakerx/portfolio/internal/sanitize"
	"github.com/keyxmakerx/portfolio/internal/store"
)

// Field limits in runes.
const (
	maxNameLength    = 100
	maxEmailLength   = 254
	maxSubjectLength = 200
	maxBodyLength    = 5000
	maxReasonLength  = 200
)

// SubmitRequest is the public contact form payload.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// BanRequest is the body of POST /api/admin/banned-ips.
type BanRequest struct {
	IP     string `json:"ip"`
	Reason string `json:"reason"`
}

// MessageService handles business logic for messages and bans.
type MessageService interface {
	Submit(ctx context.Context, req SubmitRequest, ip string) (content.Message, error)
	List(ctx context.Context) []content.Message
	MarkRead(ctx context.Context, id string, read bool) (content.Message, error)
	Delete(ctx context.Context, id string) error

	ListBanned(ctx context.Context) []content.BannedIP
	Ban(ctx context.Context, req BanRequest) (content.BannedIP, error)
	Unban(ctx context.Context, ip string) error
	IsBanned(ip string) bool
}

type messageService struct {
	store *store.Store
	now   func() time.Time
}

// NewMessageService creates a message service.
func NewMessageService(st *store.Store) MessageService {
	return &messageService{store: st, now: time.Now}
}

// Submit validates and stores a contact form message from ip.
func (s *messageService) Submit(ctx context.Context, req SubmitRequest, ip string) (content.Message, error) {
	msg := content.Message{
		Name:    sanitize.Line(req.Name, maxNameLength),
		Email:   sanitize.Line(req.Email, maxEmailLength),
		Subject: sanitize.Line(req.Subject, maxSubjectLength),
		Body:    sanitize.Multiline(req.Message, maxBodyLength),
		IP:      ip,
	}
	if msg.Name == "" || msg.Email == "" || msg.Body == "" {
		return content.Message{}, apperror.NewValidation("name, email and message are required")
	}
	addr, err := mail.ParseAddress(msg.Email)
	if err != nil || addr.Address != msg.Email {
		return content.Message{}, apperror.NewValidation("invalid email address")
	}

	msg.ID = uuid.NewString()
	msg.CreatedAt = s.now().UTC()
	err = s.store.Update(ctx, func(d *store.Data) error {
		d.Messages = append(slices.Clone(d.Messages), msg)
		return nil
	})
	if err != nil {
		return content.Message{}, err
	}

	slog.Info("message received", slog.String("id", msg.ID), slog.String("ip", ip))
	return msg, nil
}

// List returns all messages, newest first.
func (s *messageService) List(ctx context.Context) []content.Message {
	var out []content.Message
	s.store.Read(func(d *store.Data) {
		out = slices.Clone(d.Messages)
	})
	if out == nil {
		out = []content.Message{}
	}
	slices.SortStableFunc(out, func(a, b content.Message) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// MarkRead sets the read flag of one message.
func (s *messageService) MarkRead(ctx context.Context, id string, read bool) (content.Message, error) {
	var out content.Message
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Messages, id)
		if i < 0 {
			return apperror.NewNotFound("message not found")
		}
		d.Messages = slices.Clone(d.Messages)
		d.Messages[i].Read = read
		out = d.Messages[i]
		return nil
	})
	return out, err
}

// Delete removes one message.
func (s *messageService) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, func(d *store.Data) error {
		i := indexOf(d.Messages, id)
		if i < 0 {
			return apperror.NewNotFound("message not found")
		}
		d.Messages = slices.Delete(slices.Clone(d.Messages), i, i+1)
		return nil
	})
}

// ListBanned returns the banned IPs in stored order.
func (s *messageService) ListBanned(ctx context.Context) []content.BannedIP {
	var out []content.BannedIP
	s.store.Read(func(d *store.Data) {
		out = slices.Clone(d.BannedIPs)
	})
	if out == nil {
		out = []content.BannedIP{}
	}
	return out
}

// Ban adds an IP to the ban list. The address is stored in canonical form.
func (s *messageService) Ban(ctx context.Context, req BanRequest) (content.BannedIP, error) {
	parsed := net.ParseIP(strings.TrimSpace(req.IP))
	if parsed == nil {
		return content.BannedIP{}, apperror.NewValidation("invalid IP address")
	}
	ban := content.BannedIP{
		IP:        parsed.String(),
		Reason:    sanitize.Line(req.Reason, maxReasonLength),
		CreatedAt: s.now().UTC(),
	}

	err := s.store.Update(ctx, func(d *store.Data) error {
		if bannedIndex(d.BannedIPs, ban.IP) >= 0 {
			return apperror.NewConflict("IP is already banned")
		}
		d.BannedIPs = append(slices.Clone(d.BannedIPs), ban)
		return nil
	})
	if err != nil {
		return content.BannedIP{}, err
	}

	slog.Info("ip banned", slog.String("ip", ban.IP))
	return ban, nil
}

// Unban removes an IP from the ban list.
func (s *messageService) Unban(ctx context.Context, ip string) error {
	key := canonicalIP(ip)
	err := s.store.Update(ctx, func(d *store.Data) error {
		i := bannedIndex(d.BannedIPs, key)
		if i < 0 {
			return apperror.NewNotFound("IP is not banned")
		}
		d.BannedIPs = slices.Delete(slices.Clone(d.BannedIPs), i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("ip unbanned", slog.String("ip", key))
	return nil
}

// IsBanned reports whether ip is on the ban list.
func (s *messageService) IsBanned(ip string) bool {
	key := canonicalIP(ip)
	var banned bool
	s.store.Read(func(d *store.Data) {
		banned = bannedIndex(d.BannedIPs, key) >= 0
	})
	return banned
}

// canonicalIP formats ip the way Ban stores it; unparsable input is
// returned trimmed so legacy entries still match exactly.
func canonicalIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return ip
}

func bannedIndex(bans []content.BannedIP, ip string) int {
	return slices.IndexFunc(bans, func(b content.BannedIP) bool { return canonicalIP(b.IP) == ip })
}

func indexOf(msgs []content.Message, id string) int {
	return slices.IndexFunc(msgs, func(m content.Message) bool { return m.ID == id })
}
