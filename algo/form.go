package algo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ExchangeOptions       = []string{"Binance", "Coinbase", "KuCoin", "Bitfinex"}
	DirectionOptions      = []string{"Long", "Short", "Neutral"}
	BotTypeOptions        = []string{"Single-pair", "Multi-pair"}
	ProfitCurrencyOptions = []string{"Quote", "Base"}
	PairOptions           = []string{"BTC_USDT", "ETH_USDT", "SOL_USDT", "ADA_USDT"}
	StartOrderOptions     = []string{"Market", "Limit", "Stop", "Stop-Limit"}
	ConditionOptions      = []string{"RSI", "QFL", "MACD", "Custom Condition"}
	TakeProfitTypeOptions = []string{"Single Target", "Multiple Targets", "Trailing TP"}
	ToggleOptions         = []string{"Off", "On"}
)

// FieldKind says how a form field is edited and parsed.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldNumber
	FieldInteger
	FieldChoice
)

// Field is one editable form entry. Choice fields cycle through Options.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Value    string
	Options  []string
	Optional bool
}

func (f *Field) IsToggle() bool {
	return f.Kind == FieldChoice && len(f.Options) == 2 && f.Options[0] == "Off" && f.Options[1] == "On"
}

// Form is the editable state of a bot being configured.
type Form struct {
	Kind   BotKind
	Fields []Field
	Focus  int
}

func text(key, label string) Field { return Field{Key: key, Label: label, Kind: FieldText} }

func number(key, label string, optional bool) Field {
	return Field{Key: key, Label: label, Kind: FieldNumber, Optional: optional}
}

func integer(key, label string, optional bool) Field {
	return Field{Key: key, Label: label, Kind: FieldInteger, Optional: optional}
}

func choice(key, label string, options []string) Field {
	return Field{Key: key, Label: label, Kind: FieldChoice, Options: options, Value: options[0]}
}

// NewForm returns an empty form for kind.
func NewForm(kind BotKind) *Form {
	f := &Form{Kind: kind}
	switch kind {
	case KindDCA:
		f.Fields = []Field{
			text("name", "Bot Name"),
			choice("exchange", "Exchange", ExchangeOptions),
			choice("direction", "Direction", DirectionOptions),
			choice("bot_type", "Bot Type", BotTypeOptions),
			choice("pair", "Trading Pair", PairOptions),
			choice("profit_currency", "Profit Currency", ProfitCurrencyOptions),
			number("base_order_size", "Base Order Size", false),
			choice("start_order_type", "Start Order Type", StartOrderOptions),
			choice("start_condition", "Trade Start Condition", ConditionOptions),
			number("averaging_order_size", "Averaging Order Size", false),
			number("price_deviation", "Price Deviation %", false),
			integer("max_averaging_orders", "Max Averaging Orders", false),
			number("step_multiplier", "Step Multiplier", true),
			number("max_usage", "Max Amount For Bot Usage", true),
			number("max_averaging_deviation", "Max Averaging Price Deviation %", true),
			number("take_profit", "Take Profit %", false),
			choice("take_profit_type", "Take Profit Type", TakeProfitTypeOptions),
			choice("trailing", "Trailing", ToggleOptions),
			choice("revert_profit", "Revert Profit", ToggleOptions),
			choice("stop_loss_enabled", "Stop Loss", ToggleOptions),
			number("stop_loss", "Stop Loss %", true),
			integer("max_hold_hours", "Max Hold Period (h)", true),
		}
	case KindGrid:
		f.Fields = []Field{
			text("name", "Bot Name"),
			choice("exchange", "Exchange", ExchangeOptions),
			choice("pair", "Trading Pair", PairOptions),
			number("lower_price", "Lower Price", false),
			number("upper_price", "Upper Price", false),
			integer("levels", "Grid Levels", false),
			number("order_volume", "Order Volume", false),
			number("take_profit", "Take Profit %", false),
			choice("stop_loss_enabled", "Stop Loss", ToggleOptions),
			number("stop_loss", "Stop Loss %", true),
		}
	case KindSignal:
		f.Fields = []Field{
			text("name", "Bot Name"),
			choice("exchange", "Exchange", ExchangeOptions),
			text("pairs", "Pairs"),
			number("max_usage", "Max Investment Usage", false),
			number("price_deviation", "Price Deviation %", false),
			integer("max_entries", "Max Entry Orders", false),
			number("take_profit", "Take Profit %", false),
			choice("stop_loss_enabled", "Stop Loss", ToggleOptions),
			number("stop_loss", "Stop Loss %", true),
		}
		f.Set("pairs", PairOptions[0])
	}
	return f
}

func (f *Form) Field(key string) *Field {
	for i := range f.Fields {
		if f.Fields[i].Key == key {
			return &f.Fields[i]
		}
	}
	return nil
}

func (f *Form) Value(key string) string {
	if fd := f.Field(key); fd != nil {
		return strings.TrimSpace(fd.Value)
	}
	return ""
}

// Set assigns a value. Choice fields only accept one of their options,
// matched case-insensitively.
func (f *Form) Set(key, value string) error {
	fd := f.Field(key)
	if fd == nil {
		return fmt.Errorf("unknown field %q", key)
	}
	if fd.Kind == FieldChoice {
		for _, o := range fd.Options {
			if strings.EqualFold(o, value) {
				fd.Value = o
				return nil
			}
		}
		return fmt.Errorf("%s must be one of %s", fd.Label, strings.Join(fd.Options, ", "))
	}
	fd.Value = value
	return nil
}

func (f *Form) Focused() *Field {
	if len(f.Fields) == 0 {
		return nil
	}
	return &f.Fields[f.Focus]
}

func (f *Form) Next() {
	if len(f.Fields) > 0 {
		f.Focus = (f.Focus + 1) % len(f.Fields)
	}
}

func (f *Form) Prev() {
	if len(f.Fields) > 0 {
		f.Focus = (f.Focus - 1 + len(f.Fields)) % len(f.Fields)
	}
}

// Input appends typed characters to the focused text or numeric field.
// Numeric fields ignore anything that cannot be part of a number.
func (f *Form) Input(s string) {
	fd := f.Focused()
	if fd == nil || fd.Kind == FieldChoice {
		return
	}
	for _, r := range s {
		switch fd.Kind {
		case FieldNumber:
			if (r < '0' || r > '9') && r != '.' {
				continue
			}
			if r == '.' && strings.Contains(fd.Value, ".") {
				continue
			}
		case FieldInteger:
			if r < '0' || r > '9' {
				continue
			}
		}
		fd.Value += string(r)
	}
}

func (f *Form) Backspace() {
	fd := f.Focused()
	if fd == nil || fd.Kind == FieldChoice || fd.Value == "" {
		return
	}
	runes := []rune(fd.Value)
	fd.Value = string(runes[:len(runes)-1])
}

func (f *Form) Clear() {
	if fd := f.Focused(); fd != nil && fd.Kind != FieldChoice {
		fd.Value = ""
	}
}

// Cycle moves a choice field by dir options, wrapping around.
func (f *Form) Cycle(dir int) {
	fd := f.Focused()
	if fd == nil || fd.Kind != FieldChoice || len(fd.Options) == 0 {
		return
	}
	idx := 0
	for i, o := range fd.Options {
		if o == fd.Value {
			idx = i
		}
	}
	n := len(fd.Options)
	fd.Value = fd.Options[((idx+dir)%n+n)%n]
}

// FieldError reports a single invalid field.
type FieldError struct {
	Key     string
	Label   string
	Message string
}

func (e FieldError) Error() string { return e.Label + ": " + e.Message }

// ValidationError lists every invalid field of a form.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return "invalid bot configuration: " + strings.Join(msgs, "; ")
}

// parser collects field errors while reading typed values from a form.
type parser struct {
	form     *Form
	problems []FieldError
}

func (p *parser) fail(key, msg string) {
	label := key
	if fd := p.form.Field(key); fd != nil {
		label = fd.Label
	}
	p.problems = append(p.problems, FieldError{Key: key, Label: label, Message: msg})
}

func (p *parser) str(key string) string { return p.form.Value(key) }

func (p *parser) toggle(key string) bool { return p.form.Value(key) == "On" }

// float reads a number in (lo, hi]. Empty optional fields yield def.
func (p *parser) float(key string, lo, hi, def float64) float64 {
	raw := p.str(key)
	fd := p.form.Field(key)
	if raw == "" {
		if fd != nil && fd.Optional {
			return def
		}
		p.fail(key, "is required")
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, fmt.Sprintf("%q is not a number", raw))
		return 0
	}
	if v <= lo || v > hi {
		p.fail(key, fmt.Sprintf("must be greater than %g and at most %g", lo, hi))
	}
	return v
}

// whole reads an integer in [lo, hi]. Empty optional fields yield def.
func (p *parser) whole(key string, lo, hi, def int) int {
	raw := p.str(key)
	fd := p.form.Field(key)
	if raw == "" {
		if fd != nil && fd.Optional {
			return def
		}
		p.fail(key, "is required")
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, fmt.Sprintf("%q is not a whole number", raw))
		return 0
	}
	if v < lo || v > hi {
		p.fail(key, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
	return v
}

var pairPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}_[A-Z0-9]{2,10}$`)

func normalizePair(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "/", "_"))
}

func (p *parser) pair(key string) string {
	pair := normalizePair(p.str(key))
	if !pairPattern.MatchString(pair) {
		p.fail(key, fmt.Sprintf("%q is not a pair like BTC_USDT", pair))
	}
	return pair
}

const maxPercent = 100.0

func (p *parser) exit(withTakeProfitOptions bool) ExitSettings {
	exit := ExitSettings{
		TakeProfit:      p.float("take_profit", 0, 1000, 0),
		StopLossEnabled: p.toggle("stop_loss_enabled"),
	}
	if exit.StopLossEnabled {
		if p.str("stop_loss") == "" {
			p.fail("stop_loss", "is required when stop loss is on")
		} else {
			exit.StopLoss = p.float("stop_loss", 0, maxPercent, 0)
		}
	}
	if withTakeProfitOptions {
		exit.TakeProfitType = p.str("take_profit_type")
		exit.Trailing = p.toggle("trailing")
		exit.RevertProfit = p.toggle("revert_profit")
		exit.MaxHoldHours = p.whole("max_hold_hours", 1, 24*365, 0)
	}
	return exit
}

// ParseForm validates f and builds an active bot. Every invalid field is
// reported in a single *ValidationError.
func ParseForm(f *Form, now time.Time) (BotConfig, error) {
	p := &parser{form: f}

	name := p.str("name")
	if name == "" {
		p.fail("name", "is required")
	} else if len([]rune(name)) > 40 {
		p.fail("name", "must be at most 40 characters")
	}

	cfg := BotConfig{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      f.Kind,
		Exchange:  p.str("exchange"),
		Status:    StatusActive,
		CreatedAt: now,
	}

	switch f.Kind {
	case KindDCA:
		cfg.Pair = p.pair("pair")
		d := &DCASettings{
			Direction:             p.str("direction"),
			BotType:               p.str("bot_type"),
			ProfitCurrency:        p.str("profit_currency"),
			BaseOrderSize:         p.float("base_order_size", 0, 1e9, 0),
			StartOrderType:        p.str("start_order_type"),
			StartCondition:        p.str("start_condition"),
			AveragingOrderSize:    p.float("averaging_order_size", 0, 1e9, 0),
			PriceDeviation:        p.float("price_deviation", 0, maxPercent, 0),
			MaxAveragingOrders:    p.whole("max_averaging_orders", 0, 100, 0),
			StepMultiplier:        p.float("step_multiplier", 0, 10, 1),
			MaxUsage:              p.float("max_usage", 0, 1e9, 0),
			MaxAveragingDeviation: p.float("max_averaging_deviation", 0, maxPercent, 0),
		}
		if len(p.problems) == 0 && d.MaxUsage > 0 && d.RequiredBudget() > d.MaxUsage {
			p.fail("max_usage", fmt.Sprintf("is below the %.2f needed for every averaging order", d.RequiredBudget()))
		}
		cfg.DCA = d
		cfg.Exit = p.exit(true)

	case KindGrid:
		cfg.Pair = p.pair("pair")
		g := &GridSettings{
			LowerPrice:  p.float("lower_price", 0, 1e12, 0),
			UpperPrice:  p.float("upper_price", 0, 1e12, 0),
			Levels:      p.whole("levels", 2, 200, 0),
			OrderVolume: p.float("order_volume", 0, 1e9, 0),
		}
		if g.LowerPrice > 0 && g.UpperPrice > 0 && g.UpperPrice <= g.LowerPrice {
			p.fail("upper_price", "must be above the lower price")
		}
		cfg.Grid = g
		cfg.Exit = p.exit(false)

	case KindSignal:
		var pairs []string
		for _, raw := range strings.Split(p.str("pairs"), ",") {
			pair := normalizePair(raw)
			if pair == "" {
				continue
			}
			if !pairPattern.MatchString(pair) {
				p.fail("pairs", fmt.Sprintf("%q is not a pair like BTC_USDT", pair))
				continue
			}
			pairs = append(pairs, pair)
		}
		if len(pairs) == 0 {
			p.fail("pairs", "needs at least one pair")
		} else {
			cfg.Pair = pairs[0]
		}
		cfg.Signal = &SignalSettings{
			Pairs:          pairs,
			MaxUsage:       p.float("max_usage", 0, 1e9, 0),
			PriceDeviation: p.float("price_deviation", 0, maxPercent, 0),
			MaxEntries:     p.whole("max_entries", 1, 100, 0),
		}
		cfg.Exit = p.exit(false)

	default:
		return BotConfig{}, fmt.Errorf("unknown bot kind %q", f.Kind)
	}

	if len(p.problems) > 0 {
		return BotConfig{}, &ValidationError{Problems: p.problems}
	}
	return cfg, nil
}
