package ratelimit

import "time"

// Named quota presets. These are policy defaults for the route groups that
// consume them; the mechanism takes any Config.
var (
	Login    = Config{Window: 15 * time.Minute, MaxRequests: 5}
	Search   = Config{Window: time.Minute, MaxRequests: 10}
	AdminAPI = Config{Window: time.Minute, MaxRequests: 60}
	Strict   = Config{Window: time.Minute, MaxRequests: 3}
	Loose    = Config{Window: time.Minute, MaxRequests: 100}
)
