package ops

import (
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"tradeflow/internal/codec"
	"tradeflow/internal/schema"
	"tradeflow/pkg/conn"
	"tradeflow/pkg/exception"
)

const maturityLayout = "2006-01-02"

// Historical sink kinds.
const (
	SinkFile     = "file"
	SinkJournal  = "journal"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
	SinkKafka    = "kafka"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Instruments []InstrumentConfig `json:"instruments"`
	Sectors     []SectorConfig     `json:"sectors"`
	Quoting     QuotingConfig      `json:"quoting"`
	Execution   ExecutionConfig    `json:"execution"`
	Booking     BookingConfig      `json:"booking"`
	Inquiry     InquiryConfig      `json:"inquiry"`
	GUI         GUIConfig          `json:"gui"`
	History     HistoryConfig      `json:"history"`
	Feeds       FeedsConfig        `json:"feeds"`
	HTTP        HTTPConfig         `json:"http"`
	Profiling   ProfilingConfig    `json:"profiling"`
}

// InstrumentConfig is one bond master entry with its PV01 per unit.
type InstrumentConfig struct {
	ID       string  `json:"id"`
	Ticker   string  `json:"ticker"`
	Coupon   float64 `json:"coupon"`
	Maturity string  `json:"maturity"`
	PV01     float64 `json:"pv01"`
}

// SectorConfig names a bucket of instrument ids.
type SectorConfig struct {
	Name  string   `json:"name"`
	Bonds []string `json:"bonds"`
}

// QuotingConfig tunes the quoting engine.
type QuotingConfig struct {
	BaseSize int64 `json:"baseSize"`
}

// ExecutionConfig tunes the execution engine. SpreadThreshold is in price
// notation, e.g. "0-002" for 1/128.
type ExecutionConfig struct {
	SpreadThreshold string `json:"spreadThreshold"`
	OrderType       string `json:"orderType"`
	IDPrefix        string `json:"idPrefix"`
}

// BookingConfig lists the books executions are booked into.
type BookingConfig struct {
	Books []string `json:"books"`
}

// InquiryConfig controls the customer channel.
type InquiryConfig struct {
	AutoQuote *bool `json:"autoQuote"`
}

// GUIConfig controls the throttled price screen.
type GUIConfig struct {
	ThrottleMs int `json:"throttleMs"`
}

// HistoryConfig selects the historical sinks.
type HistoryConfig struct {
	Sinks        []string            `json:"sinks"`
	Dir          string              `json:"dir"`
	JournalDir   string              `json:"journalDir"`
	Async        bool                `json:"async"`
	QueueSize    int                 `json:"queueSize"`
	Postgres     conn.PostgresOption `json:"postgres"`
	Redis        conn.RedisOption    `json:"redis"`
	StreamPrefix string              `json:"streamPrefix"`
	StreamMaxLen int64               `json:"streamMaxLen"`
	Kafka        conn.KafkaOption    `json:"kafka"`
	TopicPrefix  string              `json:"topicPrefix"`
}

// FeedsConfig points at the four inbound files.
type FeedsConfig struct {
	Prices     string `json:"prices"`
	MarketData string `json:"marketData"`
	Trades     string `json:"trades"`
	Inquiries  string `json:"inquiries"`
	BookDepth  int    `json:"bookDepth"`
}

// HTTPConfig controls the read API.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// ProfilingConfig controls continuous profiling.
type ProfilingConfig struct {
	Address         string `json:"address"`
	ApplicationName string `json:"applicationName"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry        *schema.Registry
	BaseSize        int64
	SpreadThreshold float64
	OrderType       schema.OrderType
	IDPrefix        string
	Books           []string
	AutoQuote       bool
	GUIThrottle     time.Duration
	History         HistoryConfig
	Feeds           FeedsConfig
	HTTPAddr        string
	Profiling       ProfilingConfig
}

// Load reads a JSON config file and resolves it. Sections left empty fall
// back to the defaults of DefaultFileConfig.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config").With("path", path)
	}
	return Parse(data)
}

// Parse resolves a JSON config document.
func Parse(data []byte) (Loaded, error) {
	var cfg FileConfig
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "decode config")
	}
	return Resolve(cfg)
}

// Default resolves DefaultFileConfig.
func Default() Loaded {
	loaded, err := Resolve(DefaultFileConfig())
	if err != nil {
		panic(err)
	}
	return loaded
}

// Resolve validates cfg and builds the registry.
func Resolve(cfg FileConfig) (Loaded, error) {
	def := DefaultFileConfig()
	if len(cfg.Instruments) == 0 {
		cfg.Instruments = def.Instruments
		if len(cfg.Sectors) == 0 {
			cfg.Sectors = def.Sectors
		}
	}

	registry, err := buildRegistry(cfg.Instruments, cfg.Sectors)
	if err != nil {
		return Loaded{}, err
	}

	threshold := 0.0
	if text := strings.TrimSpace(cfg.Execution.SpreadThreshold); text != "" {
		if threshold, err = codec.DecodePrice(text); err != nil {
			return Loaded{}, errors.Wrap(err, "execution spread threshold").With("value", text)
		}
	}

	orderType := schema.OrderTypeUnknown
	if name := strings.TrimSpace(cfg.Execution.OrderType); name != "" {
		var ok bool
		if orderType, ok = schema.ParseOrderType(strings.ToUpper(name)); !ok {
			return Loaded{}, errors.Wrap(exception.ErrOrderUnsupportedType, "execution order type").With("value", name)
		}
	}

	for _, kind := range cfg.History.Sinks {
		switch kind {
		case SinkFile, SinkJournal, SinkPostgres, SinkRedis, SinkKafka:
		default:
			return Loaded{}, errors.Wrap(exception.ErrArgumentUnsupported, "history sink").With("kind", kind)
		}
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = def.History.Dir
	}
	if cfg.History.JournalDir == "" {
		cfg.History.JournalDir = def.History.JournalDir
	}

	autoQuote := true
	if cfg.Inquiry.AutoQuote != nil {
		autoQuote = *cfg.Inquiry.AutoQuote
	}
	if cfg.Feeds.BookDepth < 0 {
		return Loaded{}, errors.Wrapf(exception.ErrInvalidBookDepth, "depth: %d", cfg.Feeds.BookDepth)
	}

	return Loaded{
		Registry:        registry,
		BaseSize:        cfg.Quoting.BaseSize,
		SpreadThreshold: threshold,
		OrderType:       orderType,
		IDPrefix:        cfg.Execution.IDPrefix,
		Books:           cfg.Booking.Books,
		AutoQuote:       autoQuote,
		GUIThrottle:     time.Duration(cfg.GUI.ThrottleMs) * time.Millisecond,
		History:         cfg.History,
		Feeds:           cfg.Feeds,
		HTTPAddr:        cfg.HTTP.Addr,
		Profiling:       cfg.Profiling,
	}, nil
}

func buildRegistry(instruments []InstrumentConfig, sectors []SectorConfig) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	for _, inst := range instruments {
		bond := schema.Bond{
			ID:     inst.ID,
			IDType: schema.IDTypeCUSIP,
			Ticker: inst.Ticker,
			Coupon: inst.Coupon,
		}
		if inst.Maturity != "" {
			maturity, err := time.Parse(maturityLayout, inst.Maturity)
			if err != nil {
				return nil, errors.Wrap(err, "parse maturity").With("bond", inst.ID)
			}
			bond.Maturity = maturity
		}
		if err := reg.AddBond(bond, inst.PV01); err != nil {
			return nil, errors.Wrap(err, "add bond")
		}
	}
	for _, sector := range sectors {
		if err := reg.AddSector(sector.Name, sector.Bonds...); err != nil {
			return nil, errors.Wrap(err, "add sector")
		}
	}
	return reg, nil
}
