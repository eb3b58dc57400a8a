// Package media owns the signed streaming URL protocol: issuing grants,
// verifying presented descriptors, recording views and aggregating analytics.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sdko-org/media-vault/internal/ledger"
	"github.com/sdko-org/media-vault/internal/models"
	"github.com/sdko-org/media-vault/internal/token"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound means the referenced media asset does not exist.
	ErrNotFound = errors.New("media not found")
	// ErrInvalidKind means the media kind is not one of video or audio.
	ErrInvalidKind = errors.New("media type must be either 'video' or 'audio'")
	// ErrAnalytics wraps storage failures during aggregation so driver
	// internals never reach the caller.
	ErrAnalytics = errors.New("error retrieving analytics data")
)

// StreamGrant is an issued streaming descriptor, returned to the caller that
// requested it. The grant itself is never persisted.
type StreamGrant struct {
	StreamURL string    `json:"stream_url"`
	ExpiresAt time.Time `json:"expires_at"`
	ValidFor  string    `json:"valid_for"`
}

// RecentView exposes only the client address and timestamp of a view event.
type RecentView struct {
	ClientIP  string    `json:"client_ip"`
	CreatedAt time.Time `json:"created_at"`
}

type MediaInfo struct {
	Title     string    `json:"title"`
	Kind      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalyticsReport is computed fresh on every call; callers wanting lower
// latency cache it externally. ViewsPerDay marshals with keys in ascending
// date order (encoding/json sorts map keys, and YYYY-MM-DD sorts by date).
type AnalyticsReport struct {
	TotalViews    int64            `json:"total_views"`
	UniqueClients int64            `json:"unique_ips"`
	ViewsPerDay   map[string]int64 `json:"views_per_day"`
	RecentViews   []RecentView     `json:"recent_views"`
	MediaInfo     MediaInfo        `json:"media_info"`
}

// Service wires the descriptor protocol to its collaborators. All
// configuration enters here at construction time; nothing is read from the
// environment afterwards.
type Service struct {
	secret  []byte
	baseURL string
	ttl     time.Duration
	assets  AssetStore
	ledger  ledger.ViewLedger
	log     *logrus.Entry
}

func NewService(logger *logrus.Logger, secret []byte, baseURL string, ttl time.Duration, assets AssetStore, viewLedger ledger.ViewLedger) *Service {
	return &Service{
		secret:  secret,
		baseURL: baseURL,
		ttl:     ttl,
		assets:  assets,
		ledger:  viewLedger,
		log:     logger.WithField("component", "media_service"),
	}
}

// CreateAsset registers an uploaded payload. The asset id doubles as the
// subject of every descriptor signed for it.
func (s *Service) CreateAsset(ctx context.Context, title, kind, fileURL, storageKey string) (models.MediaAsset, error) {
	if !models.ValidMediaKind(kind) {
		return models.MediaAsset{}, ErrInvalidKind
	}
	asset := models.MediaAsset{
		ID:         uuid.NewString(),
		Title:      title,
		Kind:       kind,
		FileURL:    fileURL,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.assets.Create(ctx, &asset); err != nil {
		return models.MediaAsset{}, err
	}
	return asset, nil
}

// IssueStreamURL mints a signed streaming descriptor for the asset, bound to
// clientAddr and valid for the configured window. Issuance records a view
// event; a grant that is never presented still counts as an access. If the
// asset does not exist nothing is recorded.
func (s *Service) IssueStreamURL(ctx context.Context, mediaID, clientAddr string, now time.Time) (StreamGrant, error) {
	asset, err := s.assets.FindByID(ctx, mediaID)
	if err != nil {
		return StreamGrant{}, err
	}

	if _, err := s.ledger.Insert(ctx, asset.ID, clientAddr); err != nil {
		return StreamGrant{}, err
	}

	expiry := now.Unix() + int64(s.ttl.Seconds())
	sig := token.Sign(s.secret, asset.ID, expiry, clientAddr)

	streamURL := fmt.Sprintf("%s/api/v1/media/stream/%s?exp=%d&sig=%s&ip=%s",
		s.baseURL, asset.ID, expiry, sig, url.QueryEscape(clientAddr))

	s.log.WithFields(logrus.Fields{
		"media_id":  asset.ID,
		"client_ip": clientAddr,
		"expires":   expiry,
	}).Info("Issued streaming URL")

	return StreamGrant{
		StreamURL: streamURL,
		ExpiresAt: time.Unix(expiry, 0).UTC(),
		ValidFor:  s.ttl.String(),
	}, nil
}

// Stream verifies a presented descriptor and, on success, returns the stored
// file URL for the caller to redirect to. Validation order is fixed:
// presence, expiry, signature, asset existence. Verification deliberately
// does not write to the ledger; issuance already has, and RecordView is the
// explicit second write site.
func (s *Service) Stream(ctx context.Context, mediaID, exp, sig, clientAddr string, now time.Time) (string, error) {
	if err := token.Verify(s.secret, mediaID, exp, sig, clientAddr, now.Unix()); err != nil {
		return "", err
	}

	asset, err := s.assets.FindByID(ctx, mediaID)
	if err != nil {
		return "", err
	}
	return asset.FileURL, nil
}

// RecordView appends an explicit view event for an existing asset.
func (s *Service) RecordView(ctx context.Context, mediaID, clientAddr string) (models.ViewLog, error) {
	asset, err := s.assets.FindByID(ctx, mediaID)
	if err != nil {
		return models.ViewLog{}, err
	}
	return s.ledger.Insert(ctx, asset.ID, clientAddr)
}

// Analytics aggregates the ledger for one asset.
func (s *Service) Analytics(ctx context.Context, mediaID string) (AnalyticsReport, error) {
	asset, err := s.assets.FindByID(ctx, mediaID)
	if err != nil {
		return AnalyticsReport{}, err
	}

	total, err := s.ledger.CountViews(ctx, asset.ID)
	if err != nil {
		return AnalyticsReport{}, s.analyticsFailure(asset.ID, err)
	}
	unique, err := s.ledger.DistinctClients(ctx, asset.ID)
	if err != nil {
		return AnalyticsReport{}, s.analyticsFailure(asset.ID, err)
	}
	days, err := s.ledger.ViewsPerDay(ctx, asset.ID)
	if err != nil {
		return AnalyticsReport{}, s.analyticsFailure(asset.ID, err)
	}
	recent, err := s.ledger.Recent(ctx, asset.ID, 10)
	if err != nil {
		return AnalyticsReport{}, s.analyticsFailure(asset.ID, err)
	}

	perDay := make(map[string]int64, len(days))
	for _, d := range days {
		perDay[d.Date] = d.Count
	}

	recentViews := make([]RecentView, 0, len(recent))
	for _, e := range recent {
		recentViews = append(recentViews, RecentView{ClientIP: e.ClientIP, CreatedAt: e.CreatedAt})
	}

	return AnalyticsReport{
		TotalViews:    total,
		UniqueClients: unique,
		ViewsPerDay:   perDay,
		RecentViews:   recentViews,
		MediaInfo: MediaInfo{
			Title:     asset.Title,
			Kind:      asset.Kind,
			CreatedAt: asset.CreatedAt,
		},
	}, nil
}

func (s *Service) analyticsFailure(mediaID string, err error) error {
	s.log.WithFields(logrus.Fields{
		"media_id": mediaID,
		"error":    err,
	}).Error("Analytics aggregation failed")
	return ErrAnalytics
}
