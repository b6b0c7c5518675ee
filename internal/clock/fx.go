package clock

import "go.uber.org/fx"

// Module provides the system clock to everything that derives billing dates.
var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
