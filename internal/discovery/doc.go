// Package discovery finds Midnight Brew servers on the local network with
// mDNS (DNS-SD) and lets a server advertise itself.
//
// Servers register the "_midnightbrew._tcp" service type with TXT records
// describing the server (version, API path). The terminal client browses
// for that type when started with --server auto or when running
// `midnightbrew servers`.
//
// # Usage Example
//
//	// Server side
//	reg, err := discovery.Register("Midnight Brew", 8080, map[string]string{"version": version.Version})
//	if err != nil {
//	    return err
//	}
//	defer reg.Shutdown()
//
//	// Client side
//	svc, err := discovery.FindFirst(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(svc.BaseURL())
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Client and server must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
