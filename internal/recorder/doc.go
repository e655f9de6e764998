/*
Recorder journals stage records in Write Append Log way.

# Module
  - writer: single goroutine appender with size and age based segment rotation
  - reader: checksummed record decoder
  - playback: ordered segment replay with stage filter and pacing

# Source
  - historical records from the persisted stages

# Produce
  - journal segments, replayed by position recovery and the replay tool
*/
package recorder
