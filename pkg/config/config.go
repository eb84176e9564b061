package config

import (
	"time"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"30m"`
	Migrate         bool          `envconfig:"MIGRATE" default:"true"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"fxpay:"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

//revive:disable
type Stripe struct {
	ApiKey        string        `envconfig:"API_KEY"`
	SigningSecret string        `envconfig:"SIGNING_SECRET"`
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"10s"`
	// WebhookRetention is how long delivered webhook event ids are remembered.
	WebhookRetention time.Duration `envconfig:"WEBHOOK_RETENTION" default:"24h"`
}

//revive:enable
type PaymentProviders struct {
	// Name selects the processor: "stripe" or "mock".
	Name   string  `envconfig:"NAME" default:"stripe"`
	Stripe *Stripe `envconfig:"STRIPE"`
}

type Exchange struct {
	SupportedCurrencies   []string          `envconfig:"SUPPORTED_CURRENCIES" default:"USD,EUR,GBP,JPY,AUD,CAD,CHF,HKD,NZD,SGD,SEK,DKK,NOK,MXN,PLN,BRL"`
	ZeroDecimalCurrencies []string          `envconfig:"ZERO_DECIMAL_CURRENCIES" default:"BIF,CLP,DJF,GNF,JPY,KMF,KRW,MGA,PYG,RWF,UGX,VND,VUV,XAF,XOF,XPF"`
	MinimumAmounts        map[string]string `envconfig:"MINIMUM_AMOUNTS"`
}

//revive:disable
type ExchangeRateApi struct {
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://v6.exchangerate-api.com/v6"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

//revive:enable
type ExchangeRateCache struct {
	TTL    time.Duration `envconfig:"TTL" default:"15m"`
	Prefix string        `envconfig:"PREFIX" default:"exr:rate:"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[fxpay]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
	// ProxyHeader carries the client address when the peer is a trusted proxy.
	ProxyHeader string `envconfig:"PROXY_HEADER" default:"X-Forwarded-For"`
	// TrustedProxies lists proxy IPs or CIDRs whose ProxyHeader is honoured.
	// When empty the socket address is always the client.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

type App struct {
	Env               string             `envconfig:"APP_ENV" default:"development"`
	Server            *Server            `envconfig:"SERVER"`
	Log               *Log               `envconfig:"LOG"`
	DB                *DB                `envconfig:"DATABASE"`
	Auth              *Auth              `envconfig:"AUTH"`
	Exchange          *Exchange          `envconfig:"EXCHANGE"`
	ExchangeRateApi   *ExchangeRateApi   `envconfig:"EXCHANGE_RATE_API"`
	ExchangeRateCache *ExchangeRateCache `envconfig:"EXCHANGE_RATE_CACHE"`
	Redis             *Redis             `envconfig:"REDIS"`
	RateLimit         *RateLimit         `envconfig:"RATE_LIMIT"`
	PaymentProviders  *PaymentProviders  `envconfig:"PAYMENT_PROVIDER"`
}
