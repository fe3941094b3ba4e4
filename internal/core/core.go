/*
Core wires the trading stages into one single-threaded graph and drives it
from the input files.

# Graph
  - pricing: gui, algo streaming
  - algo streaming: streaming, then the streaming sink
  - market data: algo execution, execution, then the executions sink and booking
  - booking: position, then risk and the positions sink
  - risk: risk sink
  - inquiry: inquiries sink

# Inputs
 1. prices.txt
 2. marketdata.txt
 3. trades.txt
 4. inquiries.txt

# Outputs
  - one timestamped line per update in each sink file
  - bucketed risk, position snapshot and metrics textfile on Close
*/
package core
