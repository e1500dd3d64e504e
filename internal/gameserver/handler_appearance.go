package gameserver

import (
	"context"

	"github.com/udisondev/tileworld/internal/protocol"
	"github.com/udisondev/tileworld/internal/resperr"
	"github.com/udisondev/tileworld/internal/visual"
)

// handleUpdateAppearance implements CMD_UPDATE_APPEARANCE (spec §4.3):
// replaces the player's cosmetic appearance wholesale, invalidates the
// visual fingerprint so observers pick up the change, and announces it
// to anyone already watching this player.
func (h *Handler) handleUpdateAppearance(ctx context.Context, client *GameClient, frame protocol.Frame) protocol.Frame {
	player := client.ActivePlayer()

	appearance := visual.DefaultAppearance()
	fields := map[string]*string{
		"body_type":         &appearance.BodyType,
		"skin_tone":         &appearance.SkinTone,
		"head_type":         &appearance.HeadType,
		"hair_style":        &appearance.HairStyle,
		"hair_color":        &appearance.HairColor,
		"eye_color":         &appearance.EyeColor,
		"facial_hair_style": &appearance.FacialHairStyle,
		"facial_hair_color": &appearance.FacialHairColor,
		"shirt_style":       &appearance.ShirtStyle,
		"shirt_color":       &appearance.ShirtColor,
		"pants_style":       &appearance.PantsStyle,
		"pants_color":       &appearance.PantsColor,
		"shoes_style":       &appearance.ShoesStyle,
		"shoes_color":       &appearance.ShoesColor,
	}
	for key, dest := range fields {
		if v, ok := payloadString(frame.Payload, key); ok && v != "" {
			*dest = v
		}
	}

	player.SetAppearance(appearance)
	hash := h.visuals.Register(player.ObjectID(), player.VisualState())

	if h.broadcast != nil {
		h.broadcast.AppearanceUpdated(player, hash)
	}

	return successFrame(frame, map[string]any{"visual_hash": hash})
}
