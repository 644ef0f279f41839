package models

// OptionVocabulary is the closed set of canonical equipment keys. Keys are
// normalized English labels (lowercase, spaces replaced with underscores) as
// produced by the translation step. The set is fixed at build time and shared
// read-only across extraction runs.
var OptionVocabulary = []string{
	// Exterior
	"sunroof",
	"head_lamp_(hid,_led)",
	"power_electric_trunk",
	"ghost_door_closing",
	"electric_contacts_side_mirror",
	"aluminum_wheel",
	"roof_rack",
	// Steering
	"thermal_steering_wheel",
	"electric_control_steering_wheel",
	"paddle_shift",
	"steering_wheel_remote_control",
	"power_steering_wheel",
	// Mirrors
	"ecm_room_mirror",
	"high_pass",
	// Doors and windows
	"power_door_lock",
	"power_windows",
	// Airbags
	"airbag_(driver_seat,_passenger_seat)",
	"airbag_(side)",
	"airbag_(curtain)",
	// Driver assistance
	"brake_lock_(abs)",
	"anti_-slip_(tcs)",
	"body_posture_control_device_(esc)",
	"tire_air_ap_sensor_(tpms)",
	"lane_departure_alarm_system_(ldws)",
	"electronic_control_suspension_(ecs)",
	// Parking and cameras
	"parking_detection_sensor_(front,_rear)",
	"rear_alarm_system",
	"rear_camera",
	"360_degree_around_view",
	// Driving systems
	"cruise_control_(general,_adaptive)",
	"head_-up_display_(hud)",
	"electronic_parking_brake_(epb)",
	// Climate
	"automatic_air_conditioner",
	// Access and convenience
	"smart_key",
	"wireless_door_lock",
	"rain_sensor",
	"auto_light",
	"curtain/blind_(back_seat,_rear)",
	// Multimedia
	"navigation",
	"front_seat_av_monitor",
	"back_seat_av_monitor",
	"bluetooth",
	"cd_player",
	"usb_terminal",
	"aux_terminal",
	// Seats
	"leather_sheet",
	"electric_seat_(driver_seat,_passenger_seat)",
	"electric_sheet_(back_seat)",
	"heated_seats_(front_seats,_rear_seats)",
	"memory_sheet_(driver's_seat,_passenger_seat)",
	"ventilation_sheet_(driver's_seat,_passenger_seat)",
	"ventilation_sheet_(back_seat)",
	"massage_sheet",
}

// DefaultOptions returns a fresh all-false map covering the whole vocabulary.
func DefaultOptions() map[string]bool {
	opts := make(map[string]bool, len(OptionVocabulary))
	for _, key := range OptionVocabulary {
		opts[key] = false
	}
	return opts
}

// IsKnownOption reports whether key belongs to the canonical vocabulary.
func IsKnownOption(key string) bool {
	for _, k := range OptionVocabulary {
		if k == key {
			return true
		}
	}
	return false
}
