// README: Interactive terminal client for the conversational booking flow.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"tailwind/internal/ai"
	"tailwind/internal/config"
	"tailwind/internal/flights"
	"tailwind/internal/infra"
	"tailwind/internal/logger"
	"tailwind/internal/modules/booking"
	"tailwind/internal/modules/dialogue"
	"tailwind/internal/modules/offer"
	"tailwind/internal/modules/search"
	"tailwind/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A silent logger keeps the chat transcript readable.
	logg := logger.NewNop()

	filler, err := ai.NewGeminiFiller(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer filler.Close()

	flightsClient := flights.NewClient(cfg.Flights.BaseURL, cfg.Flights.APIKey, cfg.Flights.Timeout, logg)

	var cache search.Cache
	if cfg.Redis.Addr != "" {
		cache = search.NewRedisCache(infra.NewRedis(cfg.Redis.Addr), cfg.Search.CacheTTL, logg)
	} else {
		cache = search.NewMemoryCache(cfg.Search.CacheTTL)
	}

	searchSvc := search.NewService(flightsClient, cache, cfg.Search, logg)
	bookingSvc := booking.NewService(flightsClient, cfg.Search.IncludeAirlines, logg)
	ctrl := dialogue.NewController(filler, searchSvc, offer.NewPairer(logg), bookingSvc, logg)

	conv := dialogue.NewStore().Create()

	fmt.Println("Tell me about the trip you want to book. Commands: search, select N, book N, reset, quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(strings.ToLower(line))
		switch fields[0] {
		case "search":
			runSearch(ctx, ctrl, conv)
		case "select":
			if n, ok := parseIndex(fields); ok {
				runSelect(ctx, ctrl, conv, n)
			}
		case "book":
			if n, ok := parseIndex(fields); ok {
				runBook(ctx, ctrl, conv, n)
			}
		case "reset":
			ctrl.Reset(conv)
			fmt.Println("Fresh start. Where are we flying?")
		default:
			res, err := ctrl.HandleTurn(ctx, conv, line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(res.Message)
			if res.Complete {
				fmt.Printf("trip: %s\n", res.Snapshot)
				fmt.Println("All details collected. Type 'search' to find flights.")
			}
			if res.State == dialogue.StateExited {
				return
			}
		}
	}
}

func parseIndex(fields []string) (int, bool) {
	if len(fields) < 2 {
		fmt.Println("usage: select N / book N")
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Printf("not a number: %s\n", fields[1])
		return 0, false
	}
	return n, true
}

func runSearch(ctx context.Context, ctrl *dialogue.Controller, conv *dialogue.Conversation) {
	res, err := ctrl.StartSearch(ctx, conv)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	printPairs(res.Pairs)
	if len(res.Pairs) > 0 {
		fmt.Println("Type 'select N' to pick an outbound flight.")
	}
}

func runSelect(ctx context.Context, ctrl *dialogue.Controller, conv *dialogue.Conversation, n int) {
	res, err := ctrl.SelectOutbound(ctx, conv, n)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	printPairs(res.Pairs)
	if len(res.Pairs) > 0 {
		fmt.Println("Type 'book N' to get a booking link.")
	}
}

func runBook(ctx context.Context, ctrl *dialogue.Controller, conv *dialogue.Conversation, n int) {
	ref, err := ctrl.ResolveBooking(ctx, conv, n)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if ref.BookWith != "" {
		fmt.Printf("Book with %s for %s: %s\n", ref.BookWith, fmtMoney(ref.Price), ref.URL)
	} else {
		fmt.Printf("Booking link: %s\n", ref.URL)
	}
	if ref.FallbackURL != "" {
		fmt.Printf("Or on Google Flights: %s\n", ref.FallbackURL)
	}
}

func printPairs(pairs []offer.RoundTripPair) {
	for i, p := range pairs {
		fmt.Printf(" [%d] %s  total %s\n", i, legLine(p.Outbound), fmtMoney(p.Total))
		if p.Return != nil {
			fmt.Printf("      return: %s\n", legLine(*p.Return))
		}
	}
}

func legLine(o offer.Offer) string {
	if len(o.Legs) == 0 {
		return "(no leg details)"
	}
	first, last := o.Legs[0], o.Legs[len(o.Legs)-1]
	stops := ""
	if n := len(o.Legs) - 1; n > 0 {
		stops = fmt.Sprintf(", %d stop(s)", n)
	}
	return fmt.Sprintf("%s %s  %s -> %s  %s%s",
		first.Airline, first.FlightNumber,
		first.DepartureAirport, last.ArrivalAirport,
		fmtDuration(o.DurationMinutes), stops)
}

func fmtDuration(min int) string {
	return fmt.Sprintf("%dh%02dm", min/60, min%60)
}

func fmtMoney(m types.Money) string {
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
