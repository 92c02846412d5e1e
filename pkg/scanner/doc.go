// Package scanner runs an ARP scan of one IPv4 network over a raw frame
// handle.
//
// A scan enumerates the host addresses of the network, sends one ARP request
// per target at a paced rate and correlates the replies read concurrently
// from the same handle. Targets that stay silent are retried up to the
// configured count and then dropped; silence is never an error.
//
// Every target moves through a monotonic state machine held by a Table:
//
//	Pending -> AwaitingReply -> Answered
//	              |    ^     \-> Exhausted
//	              v    |
//	             Pending (retry)
//
// The scan ends when every target is terminal, when the global deadline
// elapses or when its Interrupt is triggered. In the last two cases the
// remaining targets are exhausted and the hosts answered so far are
// returned.
//
// Example:
//
//	iface, _ := netif.Lookup("eth0")
//	cfg, err := scanner.NewConfig(iface, scanner.WithTimeout(time.Second))
//	if err != nil {
//		return err
//	}
//	handle, err := capture.Open(iface.Name)
//	if err != nil {
//		return err
//	}
//	defer handle.Close()
//
//	s, err := scanner.New(cfg, handle)
//	if err != nil {
//		return err
//	}
//	result, err := s.Run(ctx)
package scanner
