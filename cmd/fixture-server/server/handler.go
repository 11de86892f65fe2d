package server

import (
	"encoding/json"
	"net/http"

	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/nack"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// HandleOffer handles WebRTC offer requests from the browser.
// It creates a receive-only peer connection and returns an answer once ICE
// gathering completes.
func (s *Server) HandleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse incoming offer
	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode offer")
		http.Error(w, "Invalid offer", http.StatusBadRequest)
		return
	}

	api, err := s.newAPI()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build WebRTC API")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	peerConnection, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{}, // Local testing
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create peer connection")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	s.addPeer(peerConnection)

	fail := func(status int, msg string, err error) {
		s.logger.Error().Err(err).Msg(msg)
		s.removePeer(peerConnection)
		_ = peerConnection.Close()
		http.Error(w, http.StatusText(status), status)
	}

	// Add transceiver to receive video
	_, err = peerConnection.AddTransceiverFromKind(
		webrtc.RTPCodecTypeVideo,
		webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionRecvonly},
	)
	if err != nil {
		fail(http.StatusInternalServerError, "failed to add transceiver", err)
		return
	}

	peerConnection.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		codec := track.Codec().MimeType
		ssrc := uint32(track.SSRC())
		s.logger.Info().Str("codec", codec).Uint32("ssrc", ssrc).Msg("received track")
		s.events.Emit(EventTrack, Event{Name: EventTrack, Codec: codec, SSRC: ssrc})

		// Ask for a keyframe so the first frames decode.
		if err := peerConnection.WriteRTCP([]rtcp.Packet{
			&rtcp.PictureLossIndication{MediaSSRC: ssrc},
		}); err != nil {
			s.logger.Debug().Err(err).Msg("failed to send PLI")
		}

		go func() {
			for {
				pkt, _, err := track.ReadRTP()
				if err != nil {
					s.logger.Debug().Err(err).Uint32("ssrc", ssrc).Msg("track read ended")
					return
				}
				s.events.Emit(EventRTP, rtpEvent(codec, pkt))
			}
		}()
	})

	peerConnection.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		s.logger.Info().Str("state", state.String()).Msg("connection state changed")
		s.events.Emit(EventConnectionStateChange, Event{
			Name:  EventConnectionStateChange,
			State: state.String(),
		})
		if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed {
			s.removePeer(peerConnection)
			_ = peerConnection.Close()
		}
	})

	if err := peerConnection.SetRemoteDescription(offer); err != nil {
		fail(http.StatusBadRequest, "failed to set remote description", err)
		return
	}

	answer, err := peerConnection.CreateAnswer(nil)
	if err != nil {
		fail(http.StatusInternalServerError, "failed to create answer", err)
		return
	}

	if err := peerConnection.SetLocalDescription(answer); err != nil {
		fail(http.StatusInternalServerError, "failed to set local description", err)
		return
	}

	// Wait for ICE gathering to complete
	select {
	case <-webrtc.GatheringCompletePromise(peerConnection):
	case <-r.Context().Done():
		fail(http.StatusServiceUnavailable, "request cancelled during ICE gathering", r.Context().Err())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(peerConnection.LocalDescription()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write answer")
	}
}

// newAPI builds a WebRTC API with default codecs, RTCP reports and NACK.
func (s *Server) newAPI() (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	i := &interceptor.Registry{}
	if err := webrtc.ConfigureRTCPReports(i); err != nil {
		return nil, err
	}

	// Register NACK feedback types on MediaEngine for SDP negotiation
	m.RegisterFeedback(webrtc.RTCPFeedback{Type: "nack"}, webrtc.RTPCodecTypeVideo)
	m.RegisterFeedback(webrtc.RTCPFeedback{Type: "nack", Parameter: "pli"}, webrtc.RTPCodecTypeVideo)

	generator, err := nack.NewGeneratorInterceptor()
	if err != nil {
		return nil, err
	}
	i.Add(generator)

	return webrtc.NewAPI(
		webrtc.WithMediaEngine(m),
		webrtc.WithInterceptorRegistry(i),
	), nil
}

func rtpEvent(codec string, pkt *rtp.Packet) Event {
	return Event{
		Name:           EventRTP,
		Codec:          codec,
		SSRC:           pkt.SSRC,
		SequenceNumber: pkt.SequenceNumber,
		Timestamp:      pkt.Timestamp,
		PayloadType:    pkt.PayloadType,
	}
}
