package rpc

import (
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"strconv"
)

// Emu is the part of the emulator controllable remotely. All methods must
// be safe to call while the emulation loop runs.
type Emu interface {
	Reset()
	SetPause(pause bool)
	Stop()

	Frames() int
	Paused() bool
}

// Status is a snapshot of the emulation loop state.
type Status struct {
	Frames int
	Paused bool
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) status() Status {
	return Status{Frames: ep.emu.Frames(), Paused: ep.emu.Paused()}
}

// Each method replies with the status following the request. Methods
// without arguments take an unused int, as gob rejects empty structs.

func (ep *emuProxy) Reset(_ int, reply *Status) error {
	ep.emu.Reset()
	*reply = ep.status()
	return nil
}

func (ep *emuProxy) SetPause(pause bool, reply *Status) error {
	ep.emu.SetPause(pause)
	*reply = ep.status()
	return nil
}

func (ep *emuProxy) Stop(_ int, reply *Status) error {
	ep.emu.Stop()
	*reply = ep.status()
	return nil
}

func (ep *emuProxy) Status(_ int, reply *Status) error {
	*reply = ep.status()
	return nil
}

type Server struct {
	l net.Listener
}

// NewServer serves remote control requests for emu on localhost:port.
func NewServer(port int, emu Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("emu", &emuProxy{emu: emu}); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, srv)

	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	go func() {
		err := http.Serve(l, mux)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			modRPC.WarnZ("rpc server stopped").Error("err", err).End()
		}
	}()
	return &Server{l: l}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string { return s.l.Addr().String() }

func (s *Server) Close() error { return s.l.Close() }
