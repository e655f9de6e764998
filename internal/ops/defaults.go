package ops

// DefaultFileConfig returns the on-the-run US Treasury set with its PV01
// table and the front end, belly and long end buckets.
func DefaultFileConfig() FileConfig {
	return FileConfig{
		Instruments: []InstrumentConfig{
			{ID: "9128283H1", Ticker: "US2Y", Coupon: 0.01750, Maturity: "2019-11-30", PV01: 0.01948992},
			{ID: "9128283L2", Ticker: "US3Y", Coupon: 0.01875, Maturity: "2020-12-15", PV01: 0.02865304},
			{ID: "912828M80", Ticker: "US5Y", Coupon: 0.02000, Maturity: "2022-11-30", PV01: 0.04581119},
			{ID: "9128283J7", Ticker: "US7Y", Coupon: 0.02125, Maturity: "2024-11-30", PV01: 0.06127718},
			{ID: "9128283F5", Ticker: "US10Y", Coupon: 0.02250, Maturity: "2027-12-15", PV01: 0.08161449},
			{ID: "912810RZ3", Ticker: "US30Y", Coupon: 0.02750, Maturity: "2047-12-15", PV01: 0.15013155},
		},
		Sectors: []SectorConfig{
			{Name: "FrontEnd", Bonds: []string{"9128283H1", "9128283L2"}},
			{Name: "Belly", Bonds: []string{"912828M80", "9128283J7", "9128283F5"}},
			{Name: "LongEnd", Bonds: []string{"912810RZ3"}},
		},
		History: HistoryConfig{
			Sinks:      []string{SinkFile},
			Dir:        "output",
			JournalDir: "output/journal",
		},
		Feeds: FeedsConfig{
			Prices:     "data/prices.txt",
			MarketData: "data/marketdata.txt",
			Trades:     "data/trades.txt",
			Inquiries:  "data/inquiries.txt",
			BookDepth:  5,
		},
	}
}
