package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-stock-watchlist/internal/watcher/config"
	"golang-stock-watchlist/internal/watcher/dto"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	apiIDToken      = "au10001"
	apiIDStockInfo  = "ka10001"
	apiIDDailyChart = "ka10005"

	pathToken      = "/oauth2/token"
	pathStockInfo  = "/api/dostk/stkinfo"
	pathDailyChart = "/api/dostk/mrkcond"

	tokenCacheKey = "kiwoom:access_token"
)

var (
	// ErrQuoteNotFound is returned when the provider has no candle data for
	// a stock.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrStockNotFound is returned when the provider does not know the stock
	// code.
	ErrStockNotFound = errors.New("stock not found")
)

// KiwoomRepository is the quote source: daily candles and snapshot quotes
// from the Kiwoom Securities REST API.
type KiwoomRepository interface {
	GetDailyCandle(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error)
	GetStockInfo(ctx context.Context, stockCode string) (*dto.StockQuote, error)
	GetCurrentLowPrice(ctx context.Context, stockCode string) (int64, error)
}

type kiwoomRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	tokenCache     *cache.Cache
}

// NewKiwoomRepository creates a Kiwoom API client. Outbound requests are
// paced by a shared limiter so the provider's per-minute quota holds across
// all callers.
func NewKiwoomRepository(cfg *config.Config, log *logger.Logger) KiwoomRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Kiwoom.MaxRequestPerMinute)
	return &kiwoomRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		tokenCache:     cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// GetDailyCandle returns the candle for the given trade date, falling back to
// the most recent candle when the provider has no row for that date.
func (r *kiwoomRepository) GetDailyCandle(ctx context.Context, stockCode string, tradeDate time.Time) (*dto.DailyCandle, error) {
	candles, err := r.getDailyCandles(ctx, stockCode)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrQuoteNotFound
	}

	target := utils.DateOf(tradeDate)
	for i := range candles {
		if candles[i].TradeDate.Equal(target) {
			return &candles[i], nil
		}
	}
	return &candles[0], nil
}

func (r *kiwoomRepository) getDailyCandles(ctx context.Context, stockCode string) ([]dto.DailyCandle, error) {
	body, err := r.send(ctx, apiIDDailyChart, pathDailyChart, map[string]string{"stk_cd": stockCode})
	if err != nil {
		return nil, err
	}

	var response dto.KiwoomDailyChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode daily chart response: %w", err)
	}

	var candles []dto.DailyCandle
	for _, rec := range response.Records {
		if len(rec.Date) < 8 {
			continue
		}
		tradeDate, err := time.ParseInLocation("20060102", rec.Date[:8], time.UTC)
		if err != nil {
			continue
		}
		candles = append(candles, dto.DailyCandle{
			TradeDate:  tradeDate,
			OpenPrice:  parsePrice(rec.OpenPrice),
			HighPrice:  parsePrice(rec.HighPrice),
			LowPrice:   parsePrice(rec.LowPrice),
			ClosePrice: parsePrice(rec.ClosePrice),
			Volume:     parsePrice(rec.Volume),
		})
	}
	return candles, nil
}

func (r *kiwoomRepository) GetStockInfo(ctx context.Context, stockCode string) (*dto.StockQuote, error) {
	body, err := r.send(ctx, apiIDStockInfo, pathStockInfo, map[string]string{"stk_cd": stockCode})
	if err != nil {
		return nil, err
	}

	var response dto.KiwoomStockInfoResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode stock info response: %w", err)
	}
	if strings.TrimSpace(response.StockName) == "" {
		return nil, ErrStockNotFound
	}

	code := strings.TrimSpace(response.StockCode)
	if code == "" {
		code = stockCode
	}
	return &dto.StockQuote{
		StockCode: code,
		StockName: strings.TrimSpace(response.StockName),
		CurPrice:  parsePrice(response.CurPrice),
		OpenPrice: parsePrice(response.OpenPrice),
		HighPrice: parsePrice(response.HighPrice),
		LowPrice:  parsePrice(response.LowPrice),
		Volume:    parsePrice(response.Volume),
	}, nil
}

// GetCurrentLowPrice returns today's low for enrollment baselines, falling
// back to the latest daily candle when the snapshot quote has no low yet.
func (r *kiwoomRepository) GetCurrentLowPrice(ctx context.Context, stockCode string) (int64, error) {
	quote, err := r.GetStockInfo(ctx, stockCode)
	if err == nil && quote.LowPrice > 0 {
		return quote.LowPrice, nil
	}
	if err != nil && !errors.Is(err, ErrStockNotFound) {
		r.log.ErrorContext(ctx, "Failed to get snapshot quote, falling back to daily chart",
			logger.ErrorField(err), logger.StringField("stock_code", stockCode))
	}

	candles, err := r.getDailyCandles(ctx, stockCode)
	if err != nil {
		return 0, err
	}
	if len(candles) == 0 || candles[0].LowPrice <= 0 {
		return 0, ErrQuoteNotFound
	}
	return candles[0].LowPrice, nil
}

// accessToken returns a cached bearer token, requesting a fresh one when the
// cache has expired.
func (r *kiwoomRepository) accessToken(ctx context.Context) (string, error) {
	if tok, ok := r.tokenCache.Get(tokenCacheKey); ok {
		return tok.(string), nil
	}

	payload := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     r.cfg.Kiwoom.AppKey,
		"secretkey":  r.cfg.Kiwoom.SecretKey,
	}
	body, err := r.post(ctx, apiIDToken, pathToken, payload, "")
	if err != nil {
		return "", err
	}

	var response dto.KiwoomTokenResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if response.ReturnCode != 0 {
		return "", fmt.Errorf("token request rejected: %s", response.ReturnMsg)
	}

	ttl := 23 * time.Hour
	if len(response.ExpiresDt) >= 14 {
		if expiresAt, err := time.ParseInLocation("20060102150405", response.ExpiresDt[:14], utils.TimeNowKST().Location()); err == nil {
			if until := time.Until(expiresAt) - 5*time.Minute; until > 0 {
				ttl = until
			}
		}
	}
	r.tokenCache.Set(tokenCacheKey, response.Token, ttl)

	return response.Token, nil
}

// send performs an authenticated, rate-limited API call.
func (r *kiwoomRepository) send(ctx context.Context, apiID, path string, payload interface{}) ([]byte, error) {
	token, err := r.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.post(ctx, apiID, path, payload, token)
}

func (r *kiwoomRepository) post(ctx context.Context, apiID, path string, payload interface{}, token string) ([]byte, error) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Kiwoom.BaseURL+path, bytes.NewReader(jsonPayload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("api-id", apiID)
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Kiwoom API",
			logger.ErrorField(err), logger.StringField("api_id", apiID))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("kiwoom api %s returned status %d", apiID, resp.StatusCode)
	}
	return body, nil
}

// parsePrice parses Kiwoom's signed, comma-grouped price strings ("+1,500",
// "-300") into a magnitude. Unparseable values become 0.
func parsePrice(value string) int64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	cleaned = strings.TrimLeft(cleaned, "+-")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int64(f)
	}
	return 0
}
