package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/net/context"
)

type httpConfigService struct {
	srv     *http.Server
	handler *apiHandler
}

func (h *httpConfigService) launch(handler *apiHandler, addr string) {
	h.handler = handler

	// a router for the JSON api
	r := mux.NewRouter()

	// auth middleware
	r.Use(handler.BasicAuth)

	// api server
	r.HandleFunc("/api/status", handler.apiStatus).Methods("GET")
	r.HandleFunc("/api/grid/{dev}", handler.apiGetGrid).Methods("GET")
	r.HandleFunc("/api/grid/{dev}", handler.apiSetGrid).Methods("POST")
	r.HandleFunc("/api/led", handler.apiLed).Methods("POST")
	r.HandleFunc("/api/clear", handler.apiClear).Methods("POST")
	r.HandleFunc("/api/brightness", handler.apiBrightness).Methods("POST")
	r.HandleFunc("/api/blink", handler.apiBlink).Methods("POST")
	r.HandleFunc("/api/power", handler.apiPower).Methods("POST")
	r.HandleFunc("/api/keys", handler.apiKeys).Methods("GET")
	r.HandleFunc("/api/secret", handler.apiSecret).Methods("POST")
	r.HandleFunc("/api/stop", handler.apiStop).Methods("POST")

	h.srv = &http.Server{Addr: addr, Handler: r}

	// add to the wg
	wg.Add(1)

	// launch the server
	go func() {
		defer wg.Done()
		log.Println("starting config service http server")
		err := h.srv.ListenAndServe()
		log.Print(err)
		log.Print("Exiting config service")
	}()
}

func (h *httpConfigService) stop() {
	h.srv.Shutdown(context.Background())
}
