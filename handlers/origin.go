package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/mileusna/useragent"
	"github.com/tech-arch1tect/codeauth/services/passcode"
)

const maxUserAgentLength = 500

// originFrom collects audit metadata for an issued code. The IP honours the
// server's trusted proxy configuration.
func originFrom(c echo.Context) passcode.Origin {
	userAgent := c.Request().UserAgent()
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}

	return passcode.Origin{
		IP:        c.RealIP(),
		UserAgent: userAgent,
		Device:    DeviceInfo(userAgent),
	}
}

// DeviceInfo summarises a user agent as "<browser> on <os> (<type>)".
func DeviceInfo(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.Parse(userAgentString)

	deviceType := "Desktop"
	if ua.Mobile {
		deviceType = "Mobile"
	} else if ua.Tablet {
		deviceType = "Tablet"
	} else if ua.Bot {
		deviceType = "Bot"
	}

	browser := "Unknown Browser"
	if ua.Name != "" {
		browser = ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
	}

	os := "Unknown OS"
	if ua.OS != "" {
		os = ua.OS
		if ua.OSVersion != "" {
			os += " " + ua.OSVersion
		}
	}

	return browser + " on " + os + " (" + deviceType + ")"
}
