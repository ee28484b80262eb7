package main

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

func init() {
	// runConfigService wg
	wg.Add(1)
}

// how many key events we hold for /api/keys
const keyEventBacklog = 32

type panelStatus struct {
	Device int      `json:"device"`
	Rows   int      `json:"rows"`
	Grid   []uint16 `json:"grid"`
}

type configResponse struct {
	Response string        `json:"response"`
	Error    string        `json:"error,omitempty"`
	Devices  int           `json:"devices,omitempty"`
	Panels   []panelStatus `json:"panels,omitempty"`
}

type keyStatus struct {
	Device   int           `json:"device"`
	Row      int           `json:"row"`
	Col      int           `json:"col"`
	Pressed  bool          `json:"pressed"`
	Duration time.Duration `json:"duration"`
}

type keysResponse struct {
	Response string      `json:"response"`
	Keys     []keyStatus `json:"keys"`
}

type ledRequest struct {
	Device int  `json:"device"`
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	On     bool `json:"on"`
	Toggle bool `json:"toggle"`
}

type gridRequest struct {
	Grid []uint16 `json:"grid"`
}

type deviceRequest struct {
	Device int   `json:"device"`
	Level  uint8 `json:"level"`
	Rate   uint8 `json:"rate"`
	On     bool  `json:"on"`
}

type secretRequest struct {
	Secret string `json:"secret"`
}

type configSvcMsg struct {
	secret string
}

// apiHandler - settings for the thing that handles HTTP requests
type apiHandler struct {
	rt       runtimeConfig
	user     string
	realm    string
	secret   string
	keys     []keyStatus
	stopOnce sync.Once
	mutex    sync.Mutex
}

func newAPIHandler(rt runtimeConfig) apiHandler {
	return apiHandler{
		rt:     rt,
		user:   rt.settings.GetString(sAPIUser),
		secret: rt.settings.GetString(sAPISecret),
		realm:  "ledpanel",
	}
}

// BasicAuth binds to a object instance, and without accessors it
// will bind the string values instead of references
func (m *apiHandler) getUser() string {
	return m.user
}

func (m *apiHandler) getSecret() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.secret
}

func (m *apiHandler) setSecret(s string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.secret = s
}

func (m *apiHandler) getRealm() string {
	return m.realm
}

// BasicAuth - provide a middleware to authenticate users
func (m *apiHandler) BasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := m.getSecret()
		if secret == "" {
			// no secret, no auth
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(user), []byte(m.getUser())) != 1 || subtle.ConstantTimeCompare([]byte(pass), []byte(secret)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+m.getRealm()+`"`)
			w.WriteHeader(401)
			w.Write([]byte("Unauthorised.\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *apiHandler) addKeyEvent(evt keyEvent) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.keys = append(m.keys, keyStatus{
		Device:   evt.id.dev,
		Row:      evt.id.row,
		Col:      evt.id.col,
		Pressed:  evt.pressed,
		Duration: evt.duration,
	})
	if len(m.keys) > keyEventBacklog {
		m.keys = m.keys[len(m.keys)-keyEventBacklog:]
	}
}

func (m *apiHandler) keyEvents() []keyStatus {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]keyStatus, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *apiHandler) getStatus() configResponse {
	devs := m.rt.panel.Devices()
	panels := make([]panelStatus, devs)
	for d := 0; d < devs; d++ {
		panels[d] = panelStatus{
			Device: d,
			Rows:   m.rt.panel.Rows(d),
			Grid:   m.rt.panel.Grid(d),
		}
	}
	return configResponse{Response: "OK", Devices: devs, Panels: panels}
}

func writeAnswer(w http.ResponseWriter, cr configResponse) {
	output, _ := json.Marshal(cr)
	w.Write(output)
}

func badRequest(w http.ResponseWriter, err error) {
	w.WriteHeader(400)
	writeAnswer(w, configResponse{Response: "BAD", Error: err.Error()})
}

// devFromPath pulls {dev} out of the route
func devFromPath(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["dev"])
}

func (m *apiHandler) apiStatus(w http.ResponseWriter, r *http.Request) {
	writeAnswer(w, m.getStatus())
}

func (m *apiHandler) apiGetGrid(w http.ResponseWriter, r *http.Request) {
	dev, err := devFromPath(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	grid := m.rt.panel.Grid(dev)
	if grid == nil {
		badRequest(w, fmt.Errorf("Bad device: %d", dev))
		return
	}
	writeAnswer(w, configResponse{
		Response: "OK",
		Panels:   []panelStatus{{Device: dev, Rows: m.rt.panel.Rows(dev), Grid: grid}},
	})
}

func (m *apiHandler) apiSetGrid(w http.ResponseWriter, r *http.Request) {
	dev, err := devFromPath(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	m.rt.comms.panel <- setGridEffect(dev, req.Grid)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiLed(w http.ResponseWriter, r *http.Request) {
	var req ledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Toggle {
		m.rt.comms.panel <- toggleLedEffect(req.Device, req.Row, req.Col)
	} else {
		m.rt.comms.panel <- setLedEffect(req.Device, req.Row, req.Col, req.On)
	}
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiClear(w http.ResponseWriter, r *http.Request) {
	// no body means clear everything
	req := deviceRequest{Device: allDevices}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		badRequest(w, err)
		return
	}
	m.rt.comms.panel <- clearEffect(req.Device)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiBrightness(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	m.rt.comms.panel <- brightnessEffect(req.Device, req.Level)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiBlink(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	m.rt.comms.panel <- blinkEffect(req.Device, req.Rate)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiPower(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	m.rt.comms.panel <- powerEffect(req.Device, req.On)
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiKeys(w http.ResponseWriter, r *http.Request) {
	output, _ := json.Marshal(keysResponse{Response: "OK", Keys: m.keyEvents()})
	w.Write(output)
}

func (m *apiHandler) apiSecret(w http.ResponseWriter, r *http.Request) {
	var req secretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err)
		return
	}
	m.rt.comms.configSvc <- configSvcMsg{secret: req.Secret}
	writeAnswer(w, configResponse{Response: "OK"})
}

func (m *apiHandler) apiStop(w http.ResponseWriter, r *http.Request) {
	m.stopOnce.Do(func() {
		close(m.rt.comms.quit)
	})
	writeAnswer(w, configResponse{Response: "OK"})
}

func startConfigService(rt runtimeConfig) {
	rt.logger = &ThreadLogger{name: "API"}
	go func() {
		defer wg.Done()
		runConfigService(rt)
	}()
}

func runConfigService(rt runtimeConfig) {
	defer func() {
		rt.logger.Println("exiting runConfigService")
	}()

	handler := newAPIHandler(rt)
	rt.configService.launch(&handler, rt.settings.GetString(sListen))

	rt.logger.Println("starting config service comms loop")
	comms := rt.comms

	// comms loop, listen for secrets and key events
	for true {
		select {
		case <-comms.quit:
			rt.logger.Println("quit from config service")
			// stop the server
			rt.configService.stop()
			return
		case msg := <-comms.configSvc:
			// we only accept secret strings
			rt.logger.Println("Got a new secret")
			handler.setSecret(msg.secret)
		case evt := <-comms.keys:
			handler.addKeyEvent(evt)
		default:
			rt.clock.Sleep(dConfigSleep)
		}
	}
}
