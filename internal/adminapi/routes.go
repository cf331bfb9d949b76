package adminapi

import (
	"github.com/asaskevich/EventBus"
)

// eventBus carries sale and sync events to background subscribers.
var eventBus EventBus.Bus

// Init registers every admin API route group. The web server must be
// initialized first.
func Init(bus EventBus.Bus) {
	eventBus = bus
	registerAuthRoutes()
	registerPosRoutes()
	registerInventoryRoutes()
	registerMenuRoutes()
	registerRestaurantRoutes()
	registerFinanceRoutes()
	registerSystemRoutes()
}
