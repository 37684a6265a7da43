package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// memberDocument keeps the field names of the existing bot collection so a
// deployment can point at data written by earlier versions.
type memberDocument struct {
	UserID           string     `bson:"userId"`
	Username         string     `bson:"username"`
	WarnCount        int        `bson:"warnCount"`
	TotalAbsences    int        `bson:"totalAlpa"`
	XP               int        `bson:"xp"`
	LastMediaAt      *time.Time `bson:"lastImageTime"`
	LeaveReason      *string    `bson:"statusIzin"`
	LeaveRequestedAt *time.Time `bson:"izinTimestamp"`
	WarningExpiry    *time.Time `bson:"warnExpiry"`
	CreatedAt        time.Time  `bson:"createdAt"`
}

func toDocument(m *member.Member) memberDocument {
	return memberDocument{
		UserID:           m.UserID,
		Username:         m.DisplayName,
		WarnCount:        m.WarnCount,
		TotalAbsences:    m.TotalAbsences,
		XP:               m.XP,
		LastMediaAt:      m.LastMediaAt,
		LeaveReason:      m.LeaveReason,
		LeaveRequestedAt: m.LeaveRequestedAt,
		WarningExpiry:    m.WarningExpiry,
		CreatedAt:        m.CreatedAt,
	}
}

func (d memberDocument) toMember() member.Member {
	return member.Member{
		UserID:           d.UserID,
		DisplayName:      d.Username,
		WarnCount:        d.WarnCount,
		TotalAbsences:    d.TotalAbsences,
		XP:               d.XP,
		LastMediaAt:      d.LastMediaAt,
		LeaveReason:      d.LeaveReason,
		LeaveRequestedAt: d.LeaveRequestedAt,
		WarningExpiry:    d.WarningExpiry,
		CreatedAt:        d.CreatedAt,
	}
}

// MemberRepository stores member records in MongoDB
type MemberRepository struct {
	coll *mongo.Collection
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{coll: db.database.Collection(MembersCollection)}
}

// Create inserts a new member document
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	// BSON datetimes carry millisecond precision.
	m.CreatedAt = time.UnixMilli(m.CreatedAt.UnixMilli())

	if _, err := r.coll.InsertOne(ctx, toDocument(m)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// Get retrieves a member by user ID
func (r *MemberRepository) Get(ctx context.Context, userID string) (*member.Member, error) {
	var doc memberDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	m := doc.toMember()
	return &m, nil
}

// List returns every member ordered by registration time
func (r *MemberRepository) List(ctx context.Context) ([]member.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "userId", Value: 1}})
	return r.find(ctx, "list members", bson.D{}, opts)
}

// ListExpired returns members whose warning expiry is at or before now
func (r *MemberRepository) ListExpired(ctx context.Context, now time.Time) ([]member.Member, error) {
	filter := bson.D{{Key: "warnExpiry", Value: bson.D{{Key: "$ne", Value: nil}, {Key: "$lte", Value: now}}}}
	opts := options.Find().SetSort(bson.D{{Key: "warnExpiry", Value: 1}})
	return r.find(ctx, "list expired members", filter, opts)
}

// TopByXP returns the members with the most xp, best first
func (r *MemberRepository) TopByXP(ctx context.Context, limit int) ([]member.Member, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "xp", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, "list top members", bson.D{}, opts)
}

// Count returns the number of registered members
func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return int(n), nil
}

// CountWarned returns the number of members with at least one warning
func (r *MemberRepository) CountWarned(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "warnCount", Value: bson.D{{Key: "$gt", Value: 0}}}})
	if err != nil {
		return 0, fmt.Errorf("failed to count warned members: %w", err)
	}
	return int(n), nil
}

// UpdateLeave stores a leave note and refreshes the cached display name
func (r *MemberRepository) UpdateLeave(ctx context.Context, userID, displayName, reason string, at time.Time) error {
	return r.update(ctx, "update leave", userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "statusIzin", Value: reason},
		{Key: "izinTimestamp", Value: at},
		{Key: "username", Value: displayName},
	}}})
}

// AddXP atomically adds delta to the member's xp, recording mediaAt when set
func (r *MemberRepository) AddXP(ctx context.Context, userID string, delta int, mediaAt *time.Time) error {
	set := bson.D{{Key: "xp", Value: bson.D{{Key: "$max", Value: bson.A{
		0,
		bson.D{{Key: "$add", Value: bson.A{"$xp", delta}}},
	}}}}}
	if mediaAt != nil {
		set = append(set, bson.E{Key: "lastImageTime", Value: *mediaAt})
	}
	return r.update(ctx, "add xp", userID, mongo.Pipeline{{{Key: "$set", Value: set}}})
}

// ResetXP sets the member's xp to zero
func (r *MemberRepository) ResetXP(ctx context.Context, userID string) error {
	return r.update(ctx, "reset xp", userID, bson.D{{Key: "$set", Value: bson.D{{Key: "xp", Value: 0}}}})
}

// ClearLeave consumes the member's leave note
func (r *MemberRepository) ClearLeave(ctx context.Context, userID string) error {
	return r.update(ctx, "clear leave", userID, bson.D{{Key: "$set", Value: bson.D{{Key: "statusIzin", Value: nil}}}})
}

// RecordAbsence counts one absence and deducts penalty xp in one atomic
// update, returning the updated document
func (r *MemberRepository) RecordAbsence(ctx context.Context, userID string, penalty int) (*member.Member, error) {
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "totalAlpa", Value: bson.D{{Key: "$add", Value: bson.A{"$totalAlpa", 1}}}},
		{Key: "xp", Value: bson.D{{Key: "$max", Value: bson.A{
			0,
			bson.D{{Key: "$subtract", Value: bson.A{"$xp", penalty}}},
		}}}},
	}}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc memberDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "userId", Value: userID}}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record absence: %w", err)
	}
	m := doc.toMember()
	return &m, nil
}

// SetWarning stores the warning tier and when its punishment lapses
func (r *MemberRepository) SetWarning(ctx context.Context, userID string, warnCount int, expiry time.Time) error {
	return r.update(ctx, "set warning", userID, bson.D{{Key: "$set", Value: bson.D{
		{Key: "warnCount", Value: warnCount},
		{Key: "warnExpiry", Value: expiry},
	}}})
}

// ClearWarningExpiry removes the punishment timer
func (r *MemberRepository) ClearWarningExpiry(ctx context.Context, userID string) error {
	return r.update(ctx, "clear warning expiry", userID, bson.D{{Key: "$set", Value: bson.D{{Key: "warnExpiry", Value: nil}}}})
}

func (r *MemberRepository) update(ctx context.Context, op, userID string, update any) error {
	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "userId", Value: userID}}, update)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) find(ctx context.Context, op string, filter any, opts ...options.Lister[options.FindOptions]) ([]member.Member, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []memberDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode members: %w", err)
	}

	members := make([]member.Member, 0, len(docs))
	for _, d := range docs {
		members = append(members, d.toMember())
	}
	return members, nil
}
