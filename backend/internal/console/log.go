package console

import "github.com/soar/padoverlay/backend/internal/logging"

var log = logging.For("console")
