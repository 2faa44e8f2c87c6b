package interfaces

import "github.com/spooky-finn/go-quote-service/domain"

// BookSubscriber receives every decoded order book, synchronously and in wire
// order. Subscribers are registered at feed client construction.
type BookSubscriber interface {
	OnBookUpdate(book *domain.OrderBook)
}
