package thumbnail

import "go.uber.org/fx"

var Module = fx.Module("thumbnail", fx.Provide(New))
