// Package glowmarkt is a client for the Glowmarkt smart meter API.
//
// # Architecture
//
// The package is organised around a few pieces:
//   - Client: authenticated access to the REST API with client-side
//     rate limiting, metadata caching and optional Prometheus metrics
//   - ReadingPeriod: the supported reading granularities along with
//     alignment (AlignToPeriod) and range splitting (SplitPeriods)
//   - Reading: a normalized meter reading in UTC
//
// Key behaviours:
//
//   - Range splitting:
//     The API caps the span of a single readings request per period.
//     SplitPeriods breaks an arbitrary range into compliant chunks.
//
//   - Error taxonomy:
//     All API failures carry a Kind (NotFound, NotAuthenticated,
//     Network, Client, Server, Response) so callers can distinguish
//     absent data from broken transport.
//
// Example usage:
//
//	client, err := glowmarkt.New(glowmarkt.DefaultEndpoint())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Authenticate(ctx, username, password); err != nil {
//	    log.Fatal(err)
//	}
//
//	ranges, err := glowmarkt.SplitPeriods(start, end, glowmarkt.PeriodHalfHour)
//	for _, r := range ranges {
//	    readings, err := client.Readings(ctx, resourceID, r.Start, r.End, glowmarkt.PeriodHalfHour)
//	    ...
//	}
package glowmarkt
