// Package yalealarm provides a Go client library for the Yale Smart Alarm
// and Doorman cloud API.
//
// The library authenticates a Yale Smart Living account, keeps the access
// and refresh token pair alive across calls, and exposes thin wrappers over
// the panel and lock endpoints for reading status and sending arm, disarm,
// lock, and unlock commands.
//
// # Authentication
//
// Create a client with the account credentials. The client authenticates
// lazily on the first request, or explicitly:
//
//	client, err := yalealarm.NewClient("user@example.com", "password")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := client.Authenticate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// A 401 or 403 on any call re-authenticates (with the refresh grant when
// a refresh token is held) and retries the call exactly once. Tokens can be persisted across processes with a TokenStore:
//
//	store := yalealarm.NewFileTokenStore("/path/to/tokens.json")
//	client, err := yalealarm.NewClient("user@example.com", "password",
//	    yalealarm.WithTokenStore(store))
//
// # Panel
//
// Arm and disarm the panel, or read its state:
//
//	armed, err := client.IsArmed(ctx)
//	ok, err := client.ArmFull(ctx)
//	ok, err = client.Disarm(ctx)
//
// # Locks
//
// Doorman locks are reached through the lock API:
//
//	for lock, err := range client.LockAPI().Locks(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(lock) // frontdoor [locked]
//	}
//
//	lock, err := client.LockAPI().Get(ctx, "frontdoor")
//	ok, err := lock.Open(ctx, "123456")
//	ok, err = lock.Close(ctx)
//
// Lock state is derived client-side: from the mini gateway status bitmask
// when present, and from the status text otherwise. See Device.LockState.
package yalealarm
