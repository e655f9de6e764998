/*
Pipeline wires the trading workflow stages into one single-process graph.

# Module
  - pricing: internal prices, feeding algo streaming and the gui sink
  - market data: order books, feeding algo execution
  - execution: algo decisions become execution orders, booked round-robin as trades
  - position & risk: trades net into positions, positions price into PV01
  - inquiry: customer inquiries, answered by the in-process connector
  - history: persisted stages forwarded to the configured sinks

# Source
 1. prices, market data, trades and inquiries feed files
 2. journal replay for position recovery

# Produce
  - historical records per stage
  - position snapshot
*/
package pipeline
