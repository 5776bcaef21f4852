// Package digest produces the daily library digest: the events of the day and the
// room bookings of every library that offers them, rendered as text.
//
// A Scheduler either runs once or on a cron schedule:
//
//	s := digest.New(f, dir, os.Stdout, digest.Options{Schedule: "0 7 * * *"})
//	if err := s.Start(ctx); err != nil {
//	    return err
//	}
//
// The Write* functions render the individual pieces and are shared with the CLI.
package digest
