// Command fleetctl является административной утилитой FleetFeast: миграции, просмотр каталога
// и заказов, нагрузочный прогон писателя.
package main

import (
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
