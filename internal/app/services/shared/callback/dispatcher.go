package callback

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"context"

	"citamed-service/internal/app/config"
	"citamed-service/internal/app/contracts"
	"citamed-service/internal/app/services/shared/jwtmanager"
	"citamed-service/internal/app/services/shared/ratelimiter"
	"citamed-service/internal/pkg/constvars"
	"citamed-service/internal/pkg/dto/responses"
	"citamed-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Dispatcher POSTs terminal callback payloads. A redis marker keyed by resume
// token guards exactly-once delivery: the marker is claimed before the POST
// and released again on transient failure so the retry path stays open.
type Dispatcher struct {
	log         *zap.Logger
	cfg         *config.InternalConfig
	redisRepo   contracts.RedisRepository
	jwtManager  *jwtmanager.JWTManager
	hostLimiter *ratelimiter.ResourceLimiter
	limiter     *rate.Limiter
	client      *http.Client
}

func NewDispatcher(
	log *zap.Logger,
	cfg *config.InternalConfig,
	redisRepo contracts.RedisRepository,
	jwtMgr *jwtmanager.JWTManager,
	hostLimiter *ratelimiter.ResourceLimiter,
) *Dispatcher {
	timeout := time.Duration(cfg.Callback.HTTPTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ratePerSecond := cfg.Callback.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	burst := cfg.Callback.Burst
	if burst <= 0 {
		burst = ratePerSecond
	}
	return &Dispatcher{
		log:         log,
		cfg:         cfg,
		redisRepo:   redisRepo,
		jwtManager:  jwtMgr,
		hostLimiter: hostLimiter,
		limiter:     rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		client:      &http.Client{Timeout: timeout},
	}
}

type DeliverInput struct {
	ResumeToken string
	CallbackURL string
	Payload     responses.CallbackPayload
}

type DeliverOutput struct {
	// AlreadyDelivered is true when another attempt already posted the
	// terminal payload for this resume token.
	AlreadyDelivered bool
}

// Deliver posts the payload once. Transient failures release the delivery
// marker and return a retryable error; a marker already held means the token
// was consumed and the call is a no-op.
func (d *Dispatcher) Deliver(ctx context.Context, in *DeliverInput) (*DeliverOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	d.log.Info("Dispatcher.Deliver called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResumeTokenKey, in.ResumeToken),
		zap.String(constvars.LoggingCallbackURLKey, in.CallbackURL),
	)

	markerKey := constvars.RedisKeyCallbackDelivered + in.ResumeToken
	markerTTL := time.Duration(d.cfg.Callback.DeliveredMarkerTTLInHours) * time.Hour

	claimed, err := d.redisRepo.TrySetNX(ctx, markerKey, in.CallbackURL, markerTTL)
	if err != nil {
		return nil, err
	}
	if !claimed {
		d.log.Info("Dispatcher.Deliver token already consumed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingResumeTokenKey, in.ResumeToken),
		)
		return &DeliverOutput{AlreadyDelivered: true}, nil
	}

	if err := d.post(ctx, in); err != nil {
		// Release the marker so a retry attempt can claim it again.
		if delErr := d.redisRepo.Delete(ctx, markerKey); delErr != nil {
			d.log.Error("Dispatcher.Deliver failed to release delivery marker",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingResumeTokenKey, in.ResumeToken),
				zap.Error(delErr),
			)
		}
		return nil, err
	}

	d.log.Info("Dispatcher.Deliver callback delivered",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingResumeTokenKey, in.ResumeToken),
	)
	return &DeliverOutput{}, nil
}

func (d *Dispatcher) post(ctx context.Context, in *DeliverInput) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return exceptions.ErrSendHTTPRequest(err)
	}

	target, err := url.Parse(in.CallbackURL)
	if err != nil {
		return exceptions.ErrCreateHTTPRequest(err)
	}
	hostOut, err := d.hostLimiter.ApplyResourceLimiter(ctx, &ratelimiter.ApplyResourceLimiterInput{
		ResourceName:      target.Host,
		LimiterGroupName:  "callback",
		WindowDurationSec: 60,
		MaxQuota:          d.cfg.Callback.RatePerSecond * 60,
	})
	if err != nil {
		return err
	}
	if !hostOut.Allowed {
		return exceptions.ErrSendHTTPRequest(fmt.Errorf("callback host %s over rate window, retry in %ds", target.Host, hostOut.RetryAfterSecs))
	}

	body, err := json.Marshal(in.Payload)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, in.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	tokenOut, err := d.jwtManager.CreateToken(ctx, &jwtmanager.CreateTokenInput{Subject: in.ResumeToken})
	if err != nil {
		return exceptions.ErrSendHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+tokenOut.Token)

	resp, err := d.client.Do(req)
	if err != nil {
		return exceptions.ErrSendHTTPRequest(err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body) // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return exceptions.ErrSendHTTPRequest(fmt.Errorf("callback target answered %d", resp.StatusCode))
	}
	return nil
}
