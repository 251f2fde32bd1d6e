package timezone

import "time"

// Transition describes one DST switch in the POSIX "Mw.n.d/h" form:
// the n-th occurrence (5 = last) of a weekday (Sunday = 0) in a month,
// at a given local hour.
type Transition struct {
	Month   time.Month
	Week    int
	Weekday int
	Hour    int
}

// Rule is the offset rule resolved for one zone identifier. Offsets are
// minutes east of UTC. A zero DstStart month means the zone observes no
// DST and DstOffset equals StdOffset.
type Rule struct {
	TZ        string // the platform TZ string, kept for logging
	StdOffset int
	DstOffset int
	DstStart  Transition
	DstEnd    Transition
}

var (
	euSummerStart = Transition{Month: time.March, Week: 5, Weekday: 0, Hour: 1}
	euSummerEnd   = Transition{Month: time.October, Week: 5, Weekday: 0, Hour: 2}
	usSummerStart = Transition{Month: time.March, Week: 2, Weekday: 0, Hour: 2}
	usSummerEnd   = Transition{Month: time.November, Week: 1, Weekday: 0, Hour: 2}
)

// zoneTable maps IANA zone identifiers to their offset rules. Read-only
// after process start; resolved with a single map lookup.
var zoneTable = map[string]Rule{
	"UTC": {TZ: "UTC0"},

	"Europe/Lisbon": {TZ: "WET0WEST,M3.5.0/1,M10.5.0", StdOffset: 0, DstOffset: 60,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/London": {TZ: "GMT0BST,M3.5.0/1,M10.5.0", StdOffset: 0, DstOffset: 60,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Dublin": {TZ: "GMT0IST,M3.5.0/1,M10.5.0", StdOffset: 0, DstOffset: 60,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Atlantic/Azores": {TZ: "<-01>1<+00>,M3.5.0/0,M10.5.0/1", StdOffset: -60, DstOffset: 0,
		DstStart: euSummerStart, DstEnd: euSummerEnd},

	"Europe/Madrid": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Paris": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Berlin": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Rome": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Amsterdam": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Brussels": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Vienna": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Zurich": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Warsaw": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Stockholm": {TZ: "CET-1CEST,M3.5.0,M10.5.0/3", StdOffset: 60, DstOffset: 120,
		DstStart: euSummerStart, DstEnd: euSummerEnd},

	"Europe/Helsinki": {TZ: "EET-2EEST,M3.5.0/3,M10.5.0/4", StdOffset: 120, DstOffset: 180,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Athens": {TZ: "EET-2EEST,M3.5.0/3,M10.5.0/4", StdOffset: 120, DstOffset: 180,
		DstStart: euSummerStart, DstEnd: euSummerEnd},
	"Europe/Moscow": {TZ: "MSK-3", StdOffset: 180},

	"America/New_York": {TZ: "EST5EDT,M3.2.0,M11.1.0", StdOffset: -300, DstOffset: -240,
		DstStart: usSummerStart, DstEnd: usSummerEnd},
	"America/Toronto": {TZ: "EST5EDT,M3.2.0,M11.1.0", StdOffset: -300, DstOffset: -240,
		DstStart: usSummerStart, DstEnd: usSummerEnd},
	"America/Chicago": {TZ: "CST6CDT,M3.2.0,M11.1.0", StdOffset: -360, DstOffset: -300,
		DstStart: usSummerStart, DstEnd: usSummerEnd},
	"America/Denver": {TZ: "MST7MDT,M3.2.0,M11.1.0", StdOffset: -420, DstOffset: -360,
		DstStart: usSummerStart, DstEnd: usSummerEnd},
	"America/Phoenix": {TZ: "MST7", StdOffset: -420},
	"America/Los_Angeles": {TZ: "PST8PDT,M3.2.0,M11.1.0", StdOffset: -480, DstOffset: -420,
		DstStart: usSummerStart, DstEnd: usSummerEnd},
	"America/Sao_Paulo": {TZ: "<-03>3", StdOffset: -180},
	"America/Mexico_City": {TZ: "CST6", StdOffset: -360},

	"Africa/Cairo":        {TZ: "EET-2", StdOffset: 120},
	"Africa/Johannesburg": {TZ: "SAST-2", StdOffset: 120},

	"Asia/Jerusalem": {TZ: "IST-2IDT,M3.4.4/26,M10.5.0", StdOffset: 120, DstOffset: 180,
		DstStart: Transition{Month: time.March, Week: 4, Weekday: 5, Hour: 2},
		DstEnd:   Transition{Month: time.October, Week: 5, Weekday: 0, Hour: 2}},
	"Asia/Dubai":    {TZ: "<+04>-4", StdOffset: 240},
	"Asia/Kolkata":  {TZ: "IST-5:30", StdOffset: 330},
	"Asia/Shanghai": {TZ: "CST-8", StdOffset: 480},
	"Asia/Tokyo":    {TZ: "JST-9", StdOffset: 540},
	"Asia/Seoul":    {TZ: "KST-9", StdOffset: 540},

	"Australia/Sydney": {TZ: "AEST-10AEDT,M10.1.0,M4.1.0/3", StdOffset: 600, DstOffset: 660,
		DstStart: Transition{Month: time.October, Week: 1, Weekday: 0, Hour: 2},
		DstEnd:   Transition{Month: time.April, Week: 1, Weekday: 0, Hour: 3}},
	"Pacific/Auckland": {TZ: "NZST-12NZDT,M9.5.0,M4.1.0/3", StdOffset: 720, DstOffset: 780,
		DstStart: Transition{Month: time.September, Week: 5, Weekday: 0, Hour: 2},
		DstEnd:   Transition{Month: time.April, Week: 1, Weekday: 0, Hour: 3}},
}
