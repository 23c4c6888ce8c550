package http

import (
	"net"
	"net/http"
	"os"

	"github.com/slatedeck/slate/pkg/httpx"
)

type HealthResponse struct {
	Status string `json:"status"`
	App    string `json:"app"`
	Env    string `json:"env"`
	PID    int    `json:"pid"`
}

// HealthHandler reports process liveness; anything beyond "the process is
// up and serving" belongs to the websocket channel.
func HealthHandler(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status: "ok",
			App:    "slate-server",
			Env:    env,
			PID:    os.Getpid(),
		})
	}
}

type ServerInfoResponse struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// ServerInfoHandler tells the pairing client where to point its websocket.
// The outbound-LAN address is discovered by dialing out without sending.
func ServerInfoHandler(port int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, ServerInfoResponse{
			IP:   outboundIP(),
			Port: port,
		})
	}
}

func outboundIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
