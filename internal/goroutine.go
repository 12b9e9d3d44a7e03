package internal

import "log"

func LogGoroutineClosed(name string) {
	log.Printf("Closed %s goroutine", name)
}
