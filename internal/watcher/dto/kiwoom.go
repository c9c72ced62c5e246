package dto

import "time"

// KiwoomTokenResponse is the OAuth2 client-credentials response.
type KiwoomTokenResponse struct {
	ReturnCode int    `json:"return_code"`
	ReturnMsg  string `json:"return_msg"`
	Token      string `json:"token"`
	ExpiresDt  string `json:"expires_dt"`
}

// KiwoomStockInfoResponse is the ka10001 basic stock info response.
type KiwoomStockInfoResponse struct {
	StockCode string `json:"stk_cd"`
	StockName string `json:"stk_nm"`
	CurPrice  string `json:"cur_prc"`
	OpenPrice string `json:"open_pric"`
	HighPrice string `json:"high_pric"`
	LowPrice  string `json:"low_pric"`
	Volume    string `json:"trde_qty"`
}

// KiwoomDailyChartResponse is the ka10005 daily/weekly/monthly chart response.
type KiwoomDailyChartResponse struct {
	Records []KiwoomDailyRecord `json:"stk_ddwkmm"`
}

// KiwoomDailyRecord is one row of the daily chart.
type KiwoomDailyRecord struct {
	Date       string `json:"date"`
	OpenPrice  string `json:"open_pric"`
	HighPrice  string `json:"high_pric"`
	LowPrice   string `json:"low_pric"`
	ClosePrice string `json:"close_pric"`
	Volume     string `json:"trde_qty"`
}

// StockInfo is a resolved code/name pair.
type StockInfo struct {
	StockCode string `json:"stock_code"`
	StockName string `json:"stock_name"`
}

// StockQuote is a parsed snapshot quote for one stock.
type StockQuote struct {
	StockCode string
	StockName string
	CurPrice  int64
	OpenPrice int64
	HighPrice int64
	LowPrice  int64
	Volume    int64
}

// DailyCandle is one parsed daily OHLCV candle.
type DailyCandle struct {
	TradeDate  time.Time
	OpenPrice  int64
	HighPrice  int64
	LowPrice   int64
	ClosePrice int64
	Volume     int64
}
