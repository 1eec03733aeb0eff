package utils

//DefaultMaxFrames is the cap on sampled frames per video when 'frames.max.count' is not set
const DefaultMaxFrames = 600

//DefaultIntervalSeconds is the target spacing between two sampled frames
const DefaultIntervalSeconds = 1.0

//DefaultFramesDir is where sampled frames are persisted when 'frames.output.dir' is not set
const DefaultFramesDir = "/tmp/frames"

//NetInputSize is the square input size the detection network expects
const NetInputSize = 416

//DetectionConfidence is the minimum class score for a detector row to be kept
const DetectionConfidence = 0.5

//NMSScoreThreshold excludes candidates below it before suppression
const NMSScoreThreshold = 0.6

//NMSOverlapThreshold is the IoU above which a lower confidence box is suppressed
const NMSOverlapThreshold = 0.4

//TeamMargin is the pixel count one team colour must lead by before a region is assigned to it
const TeamMargin = 100

//PersonClass is the detector class label of players
const PersonClass = "person"

//FailedImageKey is the record key emitted for frames that could not be decoded
const FailedImageKey = "Failed to decode image"

//CounterGroup is the counter group of the analyze stage
const CounterGroup = "ImageProcessing"

//FailedImagesCounter counts frames that could not be decoded
const FailedImagesCounter = "FailedImages"

//ErrorsCounter counts frames whose analysis failed and were counted as unknown
const ErrorsCounter = "Errors"

//PossessionFileName is the merged output of the analyze stage
const PossessionFileName = "Possession.txt"

//FailedFramesFileName lists the keys of frames that could not be decoded
const FailedFramesFileName = "FailedFrames.txt"
