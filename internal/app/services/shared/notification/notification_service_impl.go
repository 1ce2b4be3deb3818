package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/services/shared/jwtmanager"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/exceptions"
	"citamed-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	notificationService contracts.NotificationSender
	once                sync.Once
)

// HTTPNotificationSender forwards booking notices to an external messaging
// provider. With no URL configured every notice is a logged no-op, which
// keeps the booking flow identical in environments without a provider.
type HTTPNotificationSender struct {
	log        *zap.Logger
	cfg        *config.InternalConfig
	jwtManager *jwtmanager.JWTManager
	client     *http.Client
}

func NewHTTPNotificationSender(log *zap.Logger, cfg *config.InternalConfig, jwtMgr *jwtmanager.JWTManager) contracts.NotificationSender {
	once.Do(func() {
		timeout := time.Duration(cfg.Notification.HTTPTimeoutInSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		notificationService = &HTTPNotificationSender{
			log:        log,
			cfg:        cfg,
			jwtManager: jwtMgr,
			client:     &http.Client{Timeout: timeout},
		}
	})
	return notificationService
}

func (s *HTTPNotificationSender) SendBookingNotice(ctx context.Context, input *contracts.SendBookingNoticeInput) error {
	if s.cfg.Notification.URL == "" {
		s.log.Info("notification provider not configured, dropping notice",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.String(constvars.LoggingPatientIDKey, input.PatientID),
		)
		return nil
	}

	body, err := json.Marshal(input)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Notification.URL, bytes.NewReader(body))
	if err != nil {
		return exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	tokenOut, err := s.jwtManager.CreateToken(ctx, &jwtmanager.CreateTokenInput{Subject: input.BookingID})
	if err != nil {
		return exceptions.ErrSendHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+tokenOut.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body) // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return exceptions.ErrSendHTTPRequest(fmt.Errorf("notification provider answered %d", resp.StatusCode))
	}
	return nil
}
