package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/nStangl/stophash/client"
	"github.com/nStangl/stophash/protocol"
	"github.com/nStangl/stophash/server/data"
	"github.com/nStangl/stophash/util"
	log "github.com/sirupsen/logrus"
)

// Global variables
var (
	conn *client.ClientImpl
	help = [9][2]string{
		{"connect", "connect to a lookup server (addr port)"},
		{"disconnect", "disconnect from the server"},
		{"get", "retrieves the stop name for a code (key)"},
		{"collisions", "number of inserts that had to probe"},
		{"stats", "stored entries, capacity and collisions"},
		{"dump", "print a range of slots (start limit)"},
		{"logLevel", "set log level"},
		{"help", "print this help"},
		{"quit", "exit the program"},
	}
)

var echo = "StopClient>"

func init() {
	log.SetLevel(log.InfoLevel)
	log.SetOutput(os.Stdout)
}

func main() {
	var (
		in   = bufio.NewReader(os.Stdin)
		quit = make(chan os.Signal, 1)
	)

	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		cleanup()
		os.Exit(0)
	}()

	for {
		fmt.Print(echo, " ")

		s, err := in.ReadString('\n')
		if errors.Is(err, io.EOF) {
			cleanup()
			return
		}

		if err != nil {
			log.Errorf("failed to read line: %v", err)
			continue
		}

		p := strings.Fields(s)
		if len(p) == 0 {
			continue
		}

		switch p[0] {
		case "connect":
			promptConnect(p)
		case "disconnect":
			promptDisconnect()
		case "get":
			promptGet(p)
		case "collisions":
			promptCollisions(p)
		case "stats":
			promptStats(p)
		case "dump":
			promptDump(p)
		case "logLevel":
			promptLogLevel(p)
		case "help":
			promptHelp()
		case "quit":
			fmt.Println(echo, "Application exit!")
			cleanup()
			return
		default:
			log.Warnf("Unknown command %q", strings.Join(p, " "))
			promptHelp()
		}
	}
}

func cleanup() {
	if conn == nil {
		return
	}

	if err := conn.Close(); err != nil {
		log.Errorf("failed to disconnect: %v", err)
	}

	log.Infof("disconnected from %s", conn)

	conn = nil
}

func connected() bool {
	if conn == nil {
		log.Warn("Error! Not connected!")
		return false
	}

	return true
}

// Drops the connection if err came from the transport
func fail(err error) {
	log.Error(err)

	var netErr net.Error
	if errors.Is(err, client.ErrNoReply) || errors.As(err, &netErr) || errors.Is(err, protocol.ErrConnClosed) {
		promptDisconnect()
	}
}

func promptDisconnect() {
	if !connected() {
		return
	}

	addr := conn.String()

	cleanup()

	fmt.Println(echo, "Connection terminated:", addr)
}

func promptConnect(p []string) {
	if err := client.ValidateInput(p, 3); err != nil {
		log.Warn(err)
		return
	}

	if conn != nil {
		log.Warn("you're already connected")
		return
	}

	c, err := client.Dial(net.JoinHostPort(p[1], p[2]))
	if err != nil {
		log.Warnf("failed to connect to server: %v", err)
		return
	}

	conn = c

	fmt.Println(echo, "connected to", c.ID())
}

func promptGet(p []string) {
	if err := client.ValidateInput(p, 2); err != nil {
		log.Warn(err)
		return
	}

	if !connected() {
		return
	}

	r, err := conn.Get(p[1])
	if err != nil {
		fail(err)
		return
	}

	if r.Kind == data.Present {
		fmt.Println(echo, "get_success", p[1], r.Value)
	} else {
		fmt.Println(echo, "get_error", p[1])
	}
}

func promptCollisions(p []string) {
	if err := client.ValidateInput(p, 1); err != nil {
		log.Warn(err)
		return
	}

	if !connected() {
		return
	}

	n, err := conn.Collisions()
	if err != nil {
		fail(err)
		return
	}

	fmt.Println(echo, "collisions", n)
}

func promptStats(p []string) {
	if err := client.ValidateInput(p, 1); err != nil {
		log.Warn(err)
		return
	}

	if !connected() {
		return
	}

	s, err := conn.Stats()
	if err != nil {
		fail(err)
		return
	}

	fmt.Printf("%s stored=%d capacity=%d collisions=%d load=%.4f\n",
		echo, s.Len, s.Capacity, s.Collisions, float64(s.Len)/float64(s.Capacity))
}

func promptDump(p []string) {
	if err := client.ValidateInput(p, 3); err != nil {
		log.Warn(err)
		return
	}

	if !connected() {
		return
	}

	start, err := strconv.Atoi(p[1])
	if err != nil {
		log.Warnf("start %q is not a number", p[1])
		return
	}

	limit, err := strconv.Atoi(p[2])
	if err != nil {
		log.Warnf("limit %q is not a number", p[2])
		return
	}

	entries, err := conn.Dump(start, limit)
	if errors.Is(err, client.ErrDumpRejected) {
		fmt.Println(echo, err)
		return
	}

	if err != nil {
		fail(err)
		return
	}

	for _, e := range entries {
		if e.Empty {
			fmt.Printf("%s %6d (empty)\n", echo, e.Index)
		} else {
			fmt.Printf("%s %6d %q %q\n", echo, e.Index, e.Key, e.Value)
		}
	}
}

func promptLogLevel(p []string) {
	if err := client.ValidateInput(p, 2); err != nil {
		log.Warn(err)
		return
	}

	prevLvl := log.GetLevel().String()

	l, ok := util.ParseLogLevel(p[1])
	if !ok {
		log.Warnf("log level %q is unrecognized", p[1])
		return
	}

	log.SetLevel(l)
	fmt.Println(echo, "loglevel set from", prevLvl, "to", p[1])
}

func promptHelp() {
	for _, h := range help {
		fmt.Printf("%s %-12s %s\n", echo, h[0], h[1])
	}
}
